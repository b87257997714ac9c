package blogservice

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
)

// memStore is an in-memory Store used to exercise the service without a database.
// Its search rank follows ts_rank for single-word queries: title words weigh 1.0, body words 0.4.
type memStore struct {
	nextID   int
	authors  map[int]bool
	posts    []*Post
	tags     []*Tag
	comments []*Comment
}

func newMemStore() *memStore {
	return &memStore{authors: map[int]bool{1: true}}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) addTag(name string) *Tag {
	t := &Tag{ID: m.id(), Name: name, Slug: slugify(name)}
	m.tags = append(m.tags, t)
	return t
}

func (m *memStore) addPost(title, body string, status Status, publish time.Time, tags ...*Tag) *Post {
	p := &Post{
		ID:       m.id(),
		Title:    title,
		Slug:     slugify(title),
		Body:     body,
		AuthorID: 1,
		Author:   "admin",
		Publish:  publish,
		Status:   status,
		Tags:     []Tag{},
	}
	for _, t := range tags {
		p.Tags = append(p.Tags, *t)
	}
	m.posts = append(m.posts, p)
	return p
}

func (m *memStore) addComment(postID int, active bool) *Comment {
	c := &Comment{ID: m.id(), PostID: postID, Name: "reader", Email: "reader@example.com", Body: "nice", Active: active}
	m.comments = append(m.comments, c)
	return c
}

func (m *memStore) findPost(id int) *Post {
	for _, p := range m.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memStore) commentCount() int {
	return len(m.comments)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func rank(p *Post, query string) float64 {
	terms := words(query)
	if len(terms) == 0 {
		return 0
	}

	var res float64
	for _, term := range terms {
		var weights []float64
		for _, w := range words(p.Title) {
			if w == term {
				weights = append(weights, 1.0)
			}
		}
		for _, w := range words(p.Body) {
			if w == term {
				weights = append(weights, 0.4)
			}
		}
		if len(weights) == 0 {
			continue
		}

		var resj, wjm float64
		jm := 0
		for j, w := range weights {
			resj += w / float64((j+1)*(j+1))
			if w > wjm {
				wjm = w
				jm = j
			}
		}
		res += (wjm + resj - wjm/float64((jm+1)*(jm+1))) / 1.64493406685
	}

	return res / float64(len(terms))
}

func (m *memStore) matching(f PostFilter) []Post {
	var out []Post
	for _, p := range m.posts {
		if p.Status != StatusPublished {
			continue
		}
		if f.TagID != 0 && !p.HasTag(f.TagID) {
			continue
		}
		post := *p
		if f.Query != "" {
			post.Rank = rank(p, f.Query)
			if post.Rank < SearchRankThreshold {
				continue
			}
		}
		out = append(out, post)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		if !out[i].Publish.Equal(out[j].Publish) {
			return out[i].Publish.After(out[j].Publish)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func (m *memStore) CountPublished(ctx context.Context, f PostFilter) (int, error) {
	return len(m.matching(f)), nil
}

func (m *memStore) ListPublished(ctx context.Context, f PostFilter, limit, offset int) ([]Post, error) {
	all := m.matching(f)
	if offset >= len(all) {
		return []Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) GetPublishedPost(ctx context.Context, id int) (*Post, error) {
	p := m.findPost(id)
	if p == nil || p.Status != StatusPublished {
		return nil, ErrRecordNotFound
	}
	post := *p
	return &post, nil
}

func (m *memStore) GetPublishedPostByDate(ctx context.Context, date time.Time, slug string) (*Post, error) {
	for _, p := range m.posts {
		publish := p.Publish.UTC()
		if p.Status == StatusPublished && p.Slug == slug &&
			publish.Year() == date.Year() && publish.Month() == date.Month() && publish.Day() == date.Day() {
			post := *p
			return &post, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memStore) SimilarPosts(ctx context.Context, target *Post, limit int) ([]Post, error) {
	var out []Post
	for _, p := range m.posts {
		if p.Status != StatusPublished || p.ID == target.ID {
			continue
		}
		shared := 0
		for _, t := range target.Tags {
			if p.HasTag(t.ID) {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		post := *p
		post.SharedTags = shared
		out = append(out, post)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SharedTags != out[j].SharedTags {
			return out[i].SharedTags > out[j].SharedTags
		}
		return out[i].Publish.After(out[j].Publish)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) InsertPost(ctx context.Context, p *Post, tagNames []string) error {
	if !m.authors[p.AuthorID] {
		return ErrAuthorForeignKey
	}

	for _, existing := range m.posts {
		if existing.Slug == p.Slug && existing.Publish.UTC().Format(time.DateOnly) == p.Publish.UTC().Format(time.DateOnly) {
			return ErrDuplicateSlug
		}
	}

	p.ID = m.id()
	p.Tags = []Tag{}
	for _, t := range m.tags {
		for _, name := range tagNames {
			if t.Name == name {
				p.Tags = append(p.Tags, *t)
			}
		}
	}

	stored := *p
	m.posts = append(m.posts, &stored)
	return nil
}

func (m *memStore) DeletePublishedPost(ctx context.Context, id int) error {
	for i, p := range m.posts {
		if p.ID == id && p.Status == StatusPublished {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)

			kept := m.comments[:0]
			for _, c := range m.comments {
				if c.PostID != id {
					kept = append(kept, c)
				}
			}
			m.comments = kept
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *memStore) ListActiveComments(ctx context.Context, postID int) ([]Comment, error) {
	out := []Comment{}
	for _, c := range m.comments {
		if c.PostID == postID && c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) InsertComment(ctx context.Context, c *Comment) error {
	p := m.findPost(c.PostID)
	if p == nil || p.Status != StatusPublished {
		return ErrRecordNotFound
	}

	c.ID = m.id()
	c.Active = true
	stored := *c
	m.comments = append(m.comments, &stored)
	return nil
}

func (m *memStore) DeleteActiveComment(ctx context.Context, id int) error {
	for i, c := range m.comments {
		if c.ID == id && c.Active {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *memStore) ListTags(ctx context.Context) ([]Tag, error) {
	out := []Tag{}
	for _, t := range m.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	for _, t := range m.tags {
		if t.Slug == slug {
			tag := *t
			return &tag, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memStore) InsertTag(ctx context.Context, t *Tag) error {
	for _, existing := range m.tags {
		if existing.Name == t.Name || existing.Slug == t.Slug {
			return ErrDuplicateTag
		}
	}

	t.ID = m.id()
	stored := *t
	m.tags = append(m.tags, &stored)
	return nil
}
