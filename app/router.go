package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// authors
	router.HandlerFunc(http.MethodPost, "/v1/authors/register", app.registerAuthorHandler)
	router.HandlerFunc(http.MethodPut, "/v1/authors/activate", app.activateAuthorHandler)
	router.HandlerFunc(http.MethodPost, "/v1/authors/login", app.loginAuthorHandler)
	router.HandlerFunc(http.MethodPost, "/v1/authors/logout", app.requireAuthenticatedAuthor(app.logoutAuthorHandler))

	// blog
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.HandlerFunc(method, "/blog", app.listPostsHandler)
		router.HandlerFunc(method, "/blog/tag/:slug", app.listPostsHandler)
		router.HandlerFunc(method, "/blog/posts/:year/:month/:day/:slug", app.showPostHandler)
	}
	router.HandlerFunc(http.MethodGet, "/blog/feed", app.latestPostsFeedHandler)
	router.HandlerFunc(http.MethodGet, "/sitemap.xml", app.sitemapHandler)

	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router)))))
}
