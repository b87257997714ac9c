package blogservice

import (
	"context"
	"strings"

	"github.com/sushihentaime/myblog/internal/common"
)

// LatestPosts returns the n newest published posts.
func (s *BlogService) LatestPosts(ctx context.Context, n int) ([]Post, error) {
	key := common.CacheKeyLatestPostsN(n)
	if cached, ok := s.c.Get(key); ok {
		return cached.([]Post), nil
	}

	posts, err := s.store.ListPublished(ctx, PostFilter{}, n, 0)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, posts)
	return posts, nil
}

// SitemapPosts returns every published post.
func (s *BlogService) SitemapPosts(ctx context.Context) ([]Post, error) {
	if cached, ok := s.c.Get(common.CacheKeySitemapPosts); ok {
		return cached.([]Post), nil
	}

	count, err := s.store.CountPublished(ctx, PostFilter{})
	if err != nil {
		return nil, err
	}

	posts := []Post{}
	if count > 0 {
		posts, err = s.store.ListPublished(ctx, PostFilter{}, count, 0)
		if err != nil {
			return nil, err
		}
	}

	s.c.Set(common.CacheKeySitemapPosts, posts)
	return posts, nil
}

// TruncateWords keeps the first n words of s, appending an ellipsis when anything was cut.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " ..."
}
