package blogservice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sushihentaime/myblog/internal/common"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

const (
	// PageSize is the number of posts on one listing page.
	PageSize = 10

	// SearchRankThreshold is the lowest relevance rank a search hit may have.
	SearchRankThreshold = 0.3

	// SimilarPostsLimit caps the similar posts shown next to a post.
	SimilarPostsLimit = 4

	// FeedSize is the number of posts in the RSS feed.
	FeedSize = 5
)

type Post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	// Body is stored in Markdown format.
	Body       string    `json:"body"`
	AuthorID   int       `json:"author_id"`
	Author     string    `json:"author"`
	Publish    time.Time `json:"publish"`
	Status     Status    `json:"status"`
	Tags       []Tag     `json:"tags"`
	Rank       float64   `json:"rank,omitempty"`
	SharedTags int       `json:"shared_tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Path returns the detail page path of the post, keyed by its publish date and slug.
func (p *Post) Path() string {
	publish := p.Publish.UTC()
	return fmt.Sprintf("/blog/posts/%d/%d/%d/%s", publish.Year(), int(publish.Month()), publish.Day(), p.Slug)
}

// HasTag reports whether the post carries the tag with the given id.
func (p *Post) HasTag(id int) bool {
	for _, t := range p.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostFilter narrows the published posts. A zero TagID and an empty Query match everything.
type PostFilter struct {
	TagID int
	Query string
}

// Store is the persistence the blog service needs. PostModel implements it on PostgreSQL.
type Store interface {
	CountPublished(ctx context.Context, f PostFilter) (int, error)
	ListPublished(ctx context.Context, f PostFilter, limit, offset int) ([]Post, error)
	GetPublishedPost(ctx context.Context, id int) (*Post, error)
	GetPublishedPostByDate(ctx context.Context, date time.Time, slug string) (*Post, error)
	SimilarPosts(ctx context.Context, p *Post, limit int) ([]Post, error)
	InsertPost(ctx context.Context, p *Post, tagNames []string) error
	DeletePublishedPost(ctx context.Context, id int) error

	ListActiveComments(ctx context.Context, postID int) ([]Comment, error)
	InsertComment(ctx context.Context, c *Comment) error
	DeleteActiveComment(ctx context.Context, id int) error

	ListTags(ctx context.Context) ([]Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*Tag, error)
	InsertTag(ctx context.Context, t *Tag) error
}

type PostModel struct {
	db *sql.DB
}

type BlogService struct {
	store  Store
	c      *common.Cache
	mb     common.MessageProducer
	policy AuthorPolicy
	now    func() time.Time
}

// Page is one page of a paginated post collection.
type Page struct {
	Number      int    `json:"number"`
	NumPages    int    `json:"num_pages"`
	Count       int    `json:"count"`
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	Posts       []Post `json:"posts"`
}
