package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/myblog/internal/authorservice"
	"github.com/sushihentaime/myblog/internal/blogservice"
)

type contextKey string

const (
	authorContextKey    = contextKey("author")
	requestIDContextKey = contextKey("request_id")
)

func (app *application) createAuthorContext(r *http.Request, author *authorservice.Author) *http.Request {
	ctx := context.WithValue(r.Context(), authorContextKey, author)
	return r.WithContext(ctx)
}

func (app *application) getAuthorContext(r *http.Request) *authorservice.Author {
	author, ok := r.Context().Value(authorContextKey).(*authorservice.Author)
	if !ok {
		return authorservice.AnonymousAuthor
	}
	return author
}

// submitter describes the request's author to the blog service's author policy.
func (app *application) submitter(r *http.Request) blogservice.Submitter {
	author := app.getAuthorContext(r)
	if author.IsAnonymous() {
		return blogservice.Submitter{}
	}

	return blogservice.Submitter{AuthorID: author.ID, CanWrite: author.CanWritePosts()}
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}
