package authorservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrNotFound          = errors.New("author not found")
	ErrEditConflict      = errors.New("edit conflict")
)

func NewAuthorModel(db *sql.DB) *AuthorModel {
	return &AuthorModel{db: db}
}

func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint
	}
	return ""
}

func (m *AuthorModel) insertAuthor(ctx context.Context, a *Author) error {
	query := `
		INSERT INTO authors (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at, version`

	args := []any{
		a.Username,
		a.Email,
		a.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Version)
	if err != nil {
		switch uniqueConstraint(err) {
		case "authors_username_key":
			return ErrDuplicateUsername
		case "authors_email_key":
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

func (m *AuthorModel) getAuthorByUsername(ctx context.Context, username string) (*Author, error) {
	query := `
		SELECT id, username, email, password, activated, version
		FROM authors
		WHERE username = $1`

	var a Author

	err := m.db.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.Email, &a.Password.hash, &a.Activated, &a.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &a, nil
}

func (m *AuthorModel) activateAuthor(tx *sql.Tx, ctx context.Context, id int, version int) error {
	query := `
		UPDATE authors
		SET activated = true, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2`

	return execOne(ctx, tx, query, ErrEditConflict, id, version)
}

func (m *AuthorModel) updatePassword(ctx context.Context, pwd Password, id int, version int) error {
	query := `
		UPDATE authors
		SET password = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3`

	return execOne(ctx, m.db, query, ErrEditConflict, pwd.hash, id, version)
}

func (m *AuthorModel) addPermission(tx *sql.Tx, ctx context.Context, id int, permissions ...Permission) error {
	for _, p := range permissions {
		_, err := tx.ExecContext(ctx, "INSERT INTO author_permissions (author_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING", id, p)
		if err != nil {
			return err
		}
	}

	return nil
}

// getAuthorByAccessToken returns the author owning an unexpired access token, with its permissions.
func (m *AuthorModel) getAuthorByAccessToken(ctx context.Context, token []byte) (*Author, error) {
	var a Author

	query := `
		SELECT a.id, a.username, a.email, a.activated, a.version, p.permission
		FROM authors a
		INNER JOIN auth_tokens t ON a.id = t.author_id
		LEFT JOIN author_permissions p ON a.id = p.author_id
		WHERE t.access_token = $1 AND t.access_token_expiry > $2`

	rows, err := m.db.QueryContext(ctx, query, token, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p sql.NullString
		err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.Activated, &a.Version, &p)
		if err != nil {
			return nil, err
		}

		if p.Valid {
			a.Permissions = append(a.Permissions, Permission(p.String))
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if a.ID == 0 {
		return nil, ErrNotFound
	}

	return &a, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execOne runs query and expects exactly one affected row, returning notFound otherwise.
func execOne(ctx context.Context, db execer, query string, notFound error, args ...any) error {
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
			return notFound
		default:
			return errors.New("too many rows affected")
		}
	}

	return nil
}
