package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Delete(key string) {
	c.Cache.Delete(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

// DeletePrefix removes every item whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for key := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Cache.Delete(key)
		}
	}
}

const (
	CacheKeyLatestPosts  = "blog:latest"
	CacheKeySitemapPosts = "blog:sitemap"
	CacheKeyTags         = "blog:tags"

	// BlogCachePrefix covers every key written by the blog service.
	BlogCachePrefix = "blog:"
)

func CacheKeyTagBySlug(slug string) string {
	return "blog:tag:" + slug
}

func CacheKeyLatestPostsN(n int) string {
	return CacheKeyLatestPosts + ":" + strconv.Itoa(n)
}

func CacheKeyAuthorByAccessToken(token []byte) string {
	return "author_by_access_token:" + string(token)
}
