package authorservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"errors"
	"time"
)

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newToken(authorID int, ttl time.Duration, scope tokenScope) (*Token, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	token := &Token{
		Plain:    base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		AuthorID: authorID,
		Expiry:   time.Now().Add(ttl).Truncate(time.Second),
		Scope:    scope,
	}

	token.Hash = hashToken(token.Plain)

	return token, nil
}

func (m *AuthorModel) createToken(ctx context.Context, authorID int, ttl time.Duration, scope tokenScope) (*Token, error) {
	token, err := newToken(authorID, ttl, scope)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO tokens (hash, author_id, expiry, scope_id)
		VALUES ($1, $2, $3, (SELECT id FROM token_scopes WHERE name = $4))`

	_, err = m.db.ExecContext(ctx, query, token.Hash, token.AuthorID, token.Expiry, string(token.Scope))
	if err != nil {
		return nil, err
	}

	return token, nil
}

func (m *AuthorModel) getAuthorByToken(ctx context.Context, scope tokenScope, token []byte) (*Author, error) {
	var a Author

	query := `
		SELECT a.id, a.username, a.email, a.activated, a.version
		FROM authors a
		INNER JOIN tokens t ON a.id = t.author_id
		INNER JOIN token_scopes s ON t.scope_id = s.id
		WHERE t.hash = $1 AND s.name = $2 AND t.expiry > $3`

	err := m.db.QueryRowContext(ctx, query, token, string(scope), time.Now()).Scan(&a.ID, &a.Username, &a.Email, &a.Activated, &a.Version)
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

func (m *AuthorModel) deleteTokens(tx *sql.Tx, ctx context.Context, authorID int, scope tokenScope) error {
	query := `
		DELETE FROM tokens
		WHERE author_id = $1 AND scope_id = (SELECT id FROM token_scopes WHERE name = $2)`

	_, err := tx.ExecContext(ctx, query, authorID, string(scope))
	return err
}

func (m *AuthorModel) createAuthToken(tx *sql.Tx, ctx context.Context, authorID int) (*AuthToken, error) {
	accessToken, err := newToken(authorID, AccessTokenTime, "")
	if err != nil {
		return nil, err
	}

	refreshToken, err := newToken(authorID, RefreshTokenTime, "")
	if err != nil {
		return nil, err
	}

	authToken := &AuthToken{
		AccessTokenPlain:   accessToken.Plain,
		AccessTokenHash:    accessToken.Hash,
		RefreshTokenPlain:  refreshToken.Plain,
		RefreshTokenHash:   refreshToken.Hash,
		AuthorID:           authorID,
		AccessTokenExpiry:  accessToken.Expiry,
		RefreshTokenExpiry: refreshToken.Expiry,
	}

	query := `
		INSERT INTO auth_tokens (access_token, refresh_token, author_id, access_token_expiry, refresh_token_expiry)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.ExecContext(ctx, query, authToken.AccessTokenHash, authToken.RefreshTokenHash, authToken.AuthorID, authToken.AccessTokenExpiry, authToken.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	return authToken, nil
}

// deleteAuthToken removes the author's token pair and returns the hash of the access token it held.
func (m *AuthorModel) deleteAuthToken(tx *sql.Tx, ctx context.Context, authorID int) ([]byte, error) {
	query := `
		DELETE FROM auth_tokens
		WHERE author_id = $1
		RETURNING access_token`

	var hash []byte
	err := tx.QueryRowContext(ctx, query, authorID).Scan(&hash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return hash, nil
}
