package main

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/sushihentaime/myblog/internal/blogservice"
)

const feedDescriptionWords = 30

func (app *application) latestPostsFeedHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.blogService.LatestPosts(r.Context(), blogservice.FeedSize)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	base := app.baseURL(r)

	feed := &feeds.Feed{
		Title:       "My Blog",
		Link:        &feeds.Link{Href: base + "/blog"},
		Description: "New posts on my blog.",
		Created:     time.Now(),
	}

	for _, p := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          base + p.Path(),
			Title:       p.Title,
			Link:        &feeds.Link{Href: base + p.Path()},
			Description: blogservice.TruncateWords(p.Body, feedDescriptionWords),
			Author:      &feeds.Author{Name: p.Author},
			Created:     p.Publish,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

func (app *application) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.blogService.SitemapPosts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	base := app.baseURL(r)

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: []sitemapURL{}}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + p.Path(),
			LastMod:    p.Publish.UTC().Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   0.9,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(out)
}
