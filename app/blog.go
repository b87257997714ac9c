package main

import (
	"net/http"
	"net/url"

	"github.com/sushihentaime/myblog/internal/blogservice"
)

// readSubmission decodes the submitted form of a POST request. GET requests carry none.
func (app *application) readSubmission(w http.ResponseWriter, r *http.Request) (*blogservice.Submission, error) {
	if r.Method != http.MethodPost {
		return nil, nil
	}

	var sub blogservice.Submission
	if err := app.parseJSON(w, r, &sub); err != nil {
		return nil, err
	}

	return &sub, nil
}

// listingURL is the listing the request came from, keeping its tag filter and page.
func listingURL(tagSlug, page string) string {
	path := "/blog"
	if tagSlug != "" {
		path += "/tag/" + url.PathEscape(tagSlug)
	}

	if page != "" {
		path += "?" + url.Values{"page": {page}}.Encode()
	}

	return path
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := app.readSubmission(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &blogservice.ListingRequest{
		TagSlug:    app.readStringParam(r, "slug"),
		Page:       r.URL.Query().Get("page"),
		Submitter:  app.submitter(r),
		Submission: sub,
	}

	res, err := app.blogService.Listing(r.Context(), req)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	if res.Redirected {
		http.Redirect(w, r, listingURL(req.TagSlug, req.Page), http.StatusSeeOther)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"page":  res.Page,
		"tag":   res.Tag,
		"query": res.Query,
		"forms": res.Forms,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	var date [3]int
	for i, key := range []string{"year", "month", "day"} {
		n, err := app.readIntParam(r, key)
		if err != nil {
			app.notFoundErrorResponse(w, r)
			return
		}
		date[i] = n
	}

	sub, err := app.readSubmission(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.blogService.Detail(r.Context(), &blogservice.DetailRequest{
		Year:       date[0],
		Month:      date[1],
		Day:        date[2],
		Slug:       app.readStringParam(r, "slug"),
		BaseURL:    app.baseURL(r),
		Submission: sub,
	})
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	if res.Redirected {
		http.Redirect(w, r, res.Post.Path(), http.StatusSeeOther)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"post":          res.Post,
		"comments":      res.Comments,
		"similar_posts": res.SimilarPosts,
		"forms":         res.Forms,
		"sent":          res.Sent,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
