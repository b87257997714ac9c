package blogservice

import (
	"errors"
	"fmt"
)

var ErrAuthorRequired = errors.New("an author with write permission is required")

type AuthorMode string

const (
	// AuthorModeDefault gives every new post to the configured default author.
	AuthorModeDefault AuthorMode = "default"
	// AuthorModeSubmitter gives the post to the authenticated submitter, who must hold post:write.
	AuthorModeSubmitter AuthorMode = "submitter"
)

// AuthorPolicy decides who owns a new post and who may change posts and tags.
type AuthorPolicy struct {
	Mode            AuthorMode
	DefaultAuthorID int
}

// Submitter is whoever sent a submission. A zero AuthorID means anonymous.
type Submitter struct {
	AuthorID int
	CanWrite bool
}

func (p AuthorPolicy) Validate() error {
	switch p.Mode {
	case AuthorModeDefault:
		if p.DefaultAuthorID < 1 {
			return fmt.Errorf("default author id must be greater than zero, got %d", p.DefaultAuthorID)
		}
	case AuthorModeSubmitter:
	default:
		return fmt.Errorf("unknown author policy %q", p.Mode)
	}

	return nil
}

// authorize checks that s may create or delete posts and create tags.
func (p AuthorPolicy) authorize(s Submitter) error {
	if p.Mode == AuthorModeSubmitter && (s.AuthorID < 1 || !s.CanWrite) {
		return ErrAuthorRequired
	}

	return nil
}

// resolve returns the author id a new post is created with.
func (p AuthorPolicy) resolve(s Submitter) (int, error) {
	if err := p.authorize(s); err != nil {
		return 0, err
	}

	if p.Mode == AuthorModeSubmitter {
		return s.AuthorID, nil
	}

	return p.DefaultAuthorID, nil
}
