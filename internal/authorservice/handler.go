package authorservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sushihentaime/myblog/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
)

func NewAuthorService(db *sql.DB, mb common.MessageProducer, cache *common.Cache) *AuthorService {
	return &AuthorService{
		m:  NewAuthorModel(db),
		mb: mb,
		c:  cache,
	}
}

// RegisterAuthor creates an inactive author account and publishes an author.registered event
// carrying the activation token. The plain token is returned as well.
func (s *AuthorService) RegisterAuthor(ctx context.Context, username, email, password string) (*Author, string, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, "", v.ValidationError()
	}

	a := Author{
		Username: username,
		Email:    email,
	}

	err := a.Password.set(password)
	if err != nil {
		return nil, "", err
	}

	err = s.m.insertAuthor(ctx, &a)
	if err != nil {
		return nil, "", err
	}

	token, err := s.m.createToken(ctx, a.ID, ActivationTokenTime, TokenScopeActivate)
	if err != nil {
		return nil, "", err
	}

	msg, err := json.Marshal(common.AuthorRegisteredEvent{
		Email: a.Email,
		Token: token.Plain,
	})
	if err != nil {
		return nil, "", err
	}

	err = s.mb.Publish(ctx, msg, common.AuthorRegisteredKey, common.BlogExchange)
	if err != nil {
		return nil, "", err
	}

	return &a, token.Plain, nil
}

// ActivateAuthor activates the account owning the token, removes its activation tokens
// and grants it post:write.
func (s *AuthorService) ActivateAuthor(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	author, err := s.m.getAuthorByToken(ctx, TokenScopeActivate, hashToken(token))
	if err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.activateAuthor(tx, ctx, author.ID, author.Version)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.deleteTokens(tx, ctx, author.ID, TokenScopeActivate)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.addPermission(tx, ctx, author.ID, PermissionWritePost)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// LoginAuthor checks the credentials and hands out a fresh access and refresh token pair,
// replacing any pair the author held before.
func (s *AuthorService) LoginAuthor(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	author, err := s.m.getAuthorByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := author.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok || !author.Activated {
		return nil, ErrAuthenticationFailure
	}

	if author.Password.needsRehash() {
		err = s.rehashPassword(ctx, author, password)
		if err != nil && !errors.Is(err, ErrEditConflict) {
			return nil, err
		}
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	old, err := s.m.deleteAuthToken(tx, ctx, author.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	authToken, err := s.m.createAuthToken(tx, ctx, author.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if old != nil {
		s.c.Delete(common.CacheKeyAuthorByAccessToken(old))
	}

	return authToken, nil
}

// rehashPassword stores the password again at the current bcrypt cost.
func (s *AuthorService) rehashPassword(ctx context.Context, author *Author, password string) error {
	if err := author.Password.set(password); err != nil {
		return err
	}

	return s.m.updatePassword(ctx, author.Password, author.ID, author.Version)
}

// GetAuthorByAccessToken returns the author owning an unexpired access token.
func (s *AuthorService) GetAuthorByAccessToken(ctx context.Context, token string) (*Author, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)
	key := common.CacheKeyAuthorByAccessToken(hash)

	if cached, ok := s.c.Get(key); ok {
		return cached.(*Author), nil
	}

	author, err := s.m.getAuthorByAccessToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, author)
	return author, nil
}

// LogoutAuthor revokes the author's tokens.
func (s *AuthorService) LogoutAuthor(ctx context.Context, authorID int) error {
	v := common.NewValidator()
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	old, err := s.m.deleteAuthToken(tx, ctx, authorID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if old != nil {
		s.c.Delete(common.CacheKeyAuthorByAccessToken(old))
	}

	return nil
}

func (a *Author) IsAnonymous() bool {
	return a == AnonymousAuthor
}

func (a *Author) HasPermission(permission Permission) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// CanWritePosts reports whether the author is activated and holds post:write.
func (a *Author) CanWritePosts() bool {
	return a.Activated && a.HasPermission(PermissionWritePost)
}
