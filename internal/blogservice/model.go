package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrAuthorForeignKey = errors.New("author_id does not exist")
	ErrDuplicateSlug    = errors.New("duplicate post slug for publish date")
	ErrDuplicateTag     = errors.New("duplicate tag")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// UniqueViolation reports whether err is a unique constraint violation on one of the named constraints.
func UniqueViolation(err error, names ...string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		for _, name := range names {
			if pqErr.Constraint == name {
				return true
			}
		}
	}

	return false
}

const searchVector = `setweight(to_tsvector('english', p.title), 'A') || setweight(to_tsvector('english', p.body), 'B')`

const searchRank = `ts_rank(` + searchVector + `, plainto_tsquery('english', $2::text))`

// publishedFilter expects $1 = tag id (0 for any), $2 = search query ('' for none), $3 = rank threshold.
const publishedFilter = `
		p.status = 'published'
		AND ($1::bigint = 0 OR EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = $1::bigint))
		AND ($2::text = '' OR ` + searchRank + ` >= $3)`

const postColumns = `p.id, p.title, p.slug, p.body, p.author_id, a.username, p.publish, p.status, p.created_at, p.updated_at`

func scanPost(row interface{ Scan(...any) error }, post *Post, extra ...any) error {
	dest := []any{&post.ID, &post.Title, &post.Slug, &post.Body, &post.AuthorID, &post.Author, &post.Publish, &post.Status, &post.CreatedAt, &post.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (m *PostModel) CountPublished(ctx context.Context, f PostFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM posts p
		WHERE` + publishedFilter

	var count int
	err := m.db.QueryRowContext(ctx, query, f.TagID, f.Query, SearchRankThreshold).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListPublished returns published posts matching f. Search results are ordered by descending rank, everything else by publish date, newest first.
func (m *PostModel) ListPublished(ctx context.Context, f PostFilter, limit, offset int) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `, CASE WHEN $2::text = '' THEN 0 ELSE ` + searchRank + ` END AS rank
		FROM posts p
		JOIN authors a ON a.id = p.author_id
		WHERE` + publishedFilter + `
		ORDER BY rank DESC, p.publish DESC, p.id DESC
		LIMIT $4 OFFSET $5`

	rows, err := m.db.QueryContext(ctx, query, f.TagID, f.Query, SearchRankThreshold, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var post Post
		err := scanPost(rows, &post, &post.Rank)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, m.attachTags(ctx, posts)
}

// attachTags loads the tags of every post in one query.
func (m *PostModel) attachTags(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int64, len(posts))
	index := make(map[int]int, len(posts))
	for i := range posts {
		ids[i] = int64(posts[i].ID)
		index[posts[i].ID] = i
		posts[i].Tags = []Tag{}
	}

	query := `
		SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name`

	rows, err := m.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int
		var tag Tag
		if err := rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return err
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, tag)
	}

	return rows.Err()
}

func (m *PostModel) getOne(ctx context.Context, where string, args ...any) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN authors a ON a.id = p.author_id
		WHERE p.status = 'published' AND ` + where

	var post Post
	err := scanPost(m.db.QueryRowContext(ctx, query, args...), &post)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	posts := []Post{post}
	if err := m.attachTags(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (m *PostModel) GetPublishedPost(ctx context.Context, id int) (*Post, error) {
	return m.getOne(ctx, "p.id = $1", id)
}

// GetPublishedPostByDate looks a post up the way its detail URL addresses it.
func (m *PostModel) GetPublishedPostByDate(ctx context.Context, date time.Time, slug string) (*Post, error) {
	return m.getOne(ctx, "p.publish_date = $1::date AND p.slug = $2", date.Format(time.DateOnly), slug)
}

// SimilarPosts returns published posts sharing tags with p, most shared tags first, then newest.
func (m *PostModel) SimilarPosts(ctx context.Context, p *Post, limit int) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `, COUNT(pt.tag_id) AS same_tags
		FROM posts p
		JOIN authors a ON a.id = p.author_id
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published'
			AND p.id <> $1
			AND pt.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = $1)
		GROUP BY p.id, a.username
		ORDER BY same_tags DESC, p.publish DESC
		LIMIT $2`

	rows, err := m.db.QueryContext(ctx, query, p.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var post Post
		if err := scanPost(rows, &post, &post.SharedTags); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, m.attachTags(ctx, posts)
}

// InsertPost stores the post and links it to the named tags in one transaction.
func (m *PostModel) InsertPost(ctx context.Context, p *Post, tagNames []string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (title, slug, body, author_id, publish, publish_date, status)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
		RETURNING id, created_at, updated_at`

	args := []any{p.Title, p.Slug, p.Body, p.AuthorID, p.Publish, p.Publish.UTC().Format(time.DateOnly), p.Status}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case UniqueViolation(err, "posts_publish_date_slug_key"):
			return ErrDuplicateSlug
		case ForeignKeyError(err, "posts_author_id_fkey"):
			return ErrAuthorForeignKey
		default:
			return err
		}
	}

	p.Tags = []Tag{}
	if len(tagNames) > 0 {
		query = `
			WITH linked AS (
				INSERT INTO post_tags (post_id, tag_id)
				SELECT $1, t.id FROM tags t WHERE t.name = ANY($2)
				RETURNING tag_id
			)
			SELECT t.id, t.name, t.slug
			FROM tags t
			JOIN linked l ON l.tag_id = t.id
			ORDER BY t.name`

		rows, err := tx.QueryContext(ctx, query, p.ID, pq.Array(tagNames))
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		for rows.Next() {
			var tag Tag
			if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
				rows.Close()
				_ = tx.Rollback()
				return err
			}
			p.Tags = append(p.Tags, tag)
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (m *PostModel) DeletePublishedPost(ctx context.Context, id int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND status = 'published'`

	return execOne(ctx, m.db, query, id)
}

func (m *PostModel) ListActiveComments(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT id, post_id, name, email, body, active, created_at, updated_at
		FROM comments
		WHERE post_id = $1 AND active
		ORDER BY created_at, id`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// InsertComment stores an active comment. The insert only happens if the target post exists and is published.
func (m *PostModel) InsertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (post_id, name, email, body)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1 AND status = 'published')
		RETURNING id, active, created_at, updated_at`

	err := m.db.QueryRowContext(ctx, query, c.PostID, c.Name, c.Email, c.Body).Scan(&c.ID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), ForeignKeyError(err, "comments_post_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) DeleteActiveComment(ctx context.Context, id int) error {
	query := `
		DELETE FROM comments
		WHERE id = $1 AND active`

	return execOne(ctx, m.db, query, id)
}

func (m *PostModel) ListTags(ctx context.Context) ([]Tag, error) {
	query := `
		SELECT id, name, slug
		FROM tags
		ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func (m *PostModel) GetTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	query := `
		SELECT id, name, slug
		FROM tags
		WHERE slug = $1`

	var t Tag
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &t, nil
}

func (m *PostModel) InsertTag(ctx context.Context, t *Tag) error {
	query := `
		INSERT INTO tags (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, t.Name, t.Slug).Scan(&t.ID)
	if err != nil {
		switch {
		case UniqueViolation(err, "tags_name_key", "tags_slug_key"):
			return ErrDuplicateTag
		default:
			return err
		}
	}

	return nil
}

// execOne runs a statement that must affect exactly one row.
func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
