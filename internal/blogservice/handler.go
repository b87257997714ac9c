package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sushihentaime/myblog/internal/common"
)

var ErrUnknownAction = errors.New("unknown form action")

func NewBlogService(db *sql.DB, cache *common.Cache, mb common.MessageProducer, policy AuthorPolicy) *BlogService {
	return newBlogService(newPostModel(db), cache, mb, policy)
}

func newBlogService(store Store, cache *common.Cache, mb common.MessageProducer, policy AuthorPolicy) *BlogService {
	return &BlogService{
		store:  store,
		c:      cache,
		mb:     mb,
		policy: policy,
		now:    time.Now,
	}
}

type ListingRequest struct {
	TagSlug    string
	Page       string
	Submitter  Submitter
	Submission *Submission
}

type ListingResult struct {
	// Redirected is set after a successful create or delete; nothing else is filled in then.
	Redirected bool   `json:"-"`
	Page       *Page  `json:"page"`
	Tag        *Tag   `json:"tag"`
	Query      string `json:"query"`
	Forms      Forms  `json:"forms"`
}

// Listing returns a page of published posts, optionally filtered by tag and
// ranked by a search query, after applying at most one submitted form.
func (s *BlogService) Listing(ctx context.Context, req *ListingRequest) (*ListingResult, error) {
	forms, err := s.listingForms(ctx)
	if err != nil {
		return nil, err
	}

	res := &ListingResult{Forms: forms}

	var filter PostFilter
	if req.Submission != nil {
		redirect, err := s.applyListingSubmission(ctx, req, res, &filter)
		if err != nil {
			return nil, err
		}

		if redirect {
			s.invalidate()
			return &ListingResult{Redirected: true}, nil
		}
	}

	if req.TagSlug != "" {
		tag, err := s.getTagBySlug(ctx, req.TagSlug)
		if err != nil {
			return nil, err
		}
		res.Tag = tag
		filter.TagID = tag.ID
	}

	res.Page, err = s.paginate(ctx, filter, req.Page)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *BlogService) listingForms(ctx context.Context) (Forms, error) {
	tags, err := s.listTags(ctx)
	if err != nil {
		return nil, err
	}

	return Forms{
		SearchFormName:  {Fields: &SearchForm{}},
		CommentFormName: {Fields: &CommentForm{}},
		TagFormName:     {Fields: &TagForm{}},
		PostFormName:    {Fields: &PostForm{Tags: []string{}}, Choices: tagNames(tags)},
	}, nil
}

// applyListingSubmission handles the one form named by the submission's action.
// It reports whether the caller should redirect instead of rendering.
func (s *BlogService) applyListingSubmission(ctx context.Context, req *ListingRequest, res *ListingResult, filter *PostFilter) (bool, error) {
	sub := req.Submission

	switch sub.Action {
	case ActionSearch:
		form := sub.Search
		if form == nil {
			form = &SearchForm{}
		}
		form.clean()

		v := common.NewValidator()
		form.validate(v)
		res.Forms[SearchFormName] = boundForm(form, v)
		if !v.Valid() {
			return false, nil
		}

		filter.Query = form.Query
		res.Query = form.Query
		return false, nil

	case ActionComment:
		form := sub.Comment
		if form == nil {
			form = &CommentForm{}
		}
		form.clean()

		v := common.NewValidator()
		form.validate(v)
		validateID(v, form.PostID, "post_id")
		if !v.Valid() {
			res.Forms[CommentFormName] = boundForm(form, v)
			return false, nil
		}

		comment := &Comment{
			PostID: form.PostID,
			Name:   form.Name,
			Email:  form.Email,
			Body:   sanitizeMarkdown(form.Body),
		}

		return true, s.store.InsertComment(ctx, comment)

	case ActionTag:
		if err := s.policy.authorize(req.Submitter); err != nil {
			return false, err
		}

		form := sub.Tag
		if form == nil {
			form = &TagForm{}
		}
		form.clean()

		v := common.NewValidator()
		form.validate(v)
		if !v.Valid() {
			res.Forms[TagFormName] = boundForm(form, v)
			return false, nil
		}

		tag := &Tag{Name: form.Name, Slug: slugify(form.Name)}
		err := s.store.InsertTag(ctx, tag)
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicateTag):
				v.AddError("name", "a tag with this name already exists")
				res.Forms[TagFormName] = boundForm(form, v)
				return false, nil
			default:
				return false, err
			}
		}

		return true, nil

	case ActionPost:
		authorID, err := s.policy.resolve(req.Submitter)
		if err != nil {
			return false, err
		}

		form := sub.Post
		if form == nil {
			form = &PostForm{}
		}
		form.clean()
		if form.Tags == nil {
			form.Tags = []string{}
		}

		choices := res.Forms[PostFormName].Choices

		v := common.NewValidator()
		form.validate(v, choices)
		if !v.Valid() {
			fs := boundForm(form, v)
			fs.Choices = choices
			res.Forms[PostFormName] = fs
			return false, nil
		}

		post := &Post{
			Title:    form.Title,
			Slug:     slugify(form.Title),
			Body:     sanitizeMarkdown(form.Body),
			AuthorID: authorID,
			Publish:  s.now().UTC().Truncate(time.Second),
			Status:   StatusPublished,
		}

		err = s.store.InsertPost(ctx, post, form.Tags)
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicateSlug):
				v.AddError("title", "a post with this title has already been published today")
				fs := boundForm(form, v)
				fs.Choices = choices
				res.Forms[PostFormName] = fs
				return false, nil
			default:
				return false, err
			}
		}

		return true, nil

	case ActionDeletePost:
		if err := s.policy.authorize(req.Submitter); err != nil {
			return false, err
		}

		if err := requireID(sub.ID); err != nil {
			return false, err
		}

		return true, s.store.DeletePublishedPost(ctx, sub.ID)

	case ActionDeleteComment:
		if err := requireID(sub.ID); err != nil {
			return false, err
		}

		return true, s.store.DeleteActiveComment(ctx, sub.ID)

	default:
		return false, ErrUnknownAction
	}
}

func requireID(id int) error {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

type DetailRequest struct {
	Year, Month, Day int
	Slug             string
	// BaseURL is the scheme and host used to build absolute post links, e.g. "https://example.com".
	BaseURL    string
	Submission *Submission
}

type DetailResult struct {
	// Redirected is set after a new comment was stored.
	Redirected   bool      `json:"-"`
	Post         *Post     `json:"post"`
	Comments     []Comment `json:"comments"`
	SimilarPosts []Post    `json:"similar_posts"`
	Forms        Forms     `json:"forms"`
	Sent         bool      `json:"sent"`
}

// Detail returns a published post with its active comments and similar posts,
// after applying at most one submitted form.
func (s *BlogService) Detail(ctx context.Context, req *DetailRequest) (*DetailResult, error) {
	date := time.Date(req.Year, time.Month(req.Month), req.Day, 0, 0, 0, 0, time.UTC)
	if date.Year() != req.Year || int(date.Month()) != req.Month || date.Day() != req.Day {
		return nil, ErrRecordNotFound
	}

	post, err := s.store.GetPublishedPostByDate(ctx, date, req.Slug)
	if err != nil {
		return nil, err
	}

	res := &DetailResult{
		Post: post,
		Forms: Forms{
			CommentFormName: {Fields: &CommentForm{}},
			ShareFormName:   {Fields: &ShareForm{}},
		},
	}

	if req.Submission != nil {
		redirect, err := s.applyDetailSubmission(ctx, req, res)
		if err != nil {
			return nil, err
		}

		if redirect {
			s.invalidate()
			return &DetailResult{Redirected: true, Post: post}, nil
		}
	}

	res.Comments, err = s.store.ListActiveComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	res.SimilarPosts, err = s.store.SimilarPosts(ctx, post, SimilarPostsLimit)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *BlogService) applyDetailSubmission(ctx context.Context, req *DetailRequest, res *DetailResult) (bool, error) {
	sub := req.Submission

	switch sub.Action {
	case ActionComment:
		form := sub.Comment
		if form == nil {
			form = &CommentForm{}
		}
		form.clean()
		form.PostID = res.Post.ID

		v := common.NewValidator()
		form.validate(v)
		if !v.Valid() {
			res.Forms[CommentFormName] = boundForm(form, v)
			return false, nil
		}

		comment := &Comment{
			PostID: res.Post.ID,
			Name:   form.Name,
			Email:  form.Email,
			Body:   sanitizeMarkdown(form.Body),
		}

		return true, s.store.InsertComment(ctx, comment)

	case ActionShare:
		form := sub.Share
		if form == nil {
			form = &ShareForm{}
		}
		form.clean()

		v := common.NewValidator()
		form.validate(v)
		if !v.Valid() {
			res.Forms[ShareFormName] = boundForm(form, v)
			return false, nil
		}

		err := s.sharePost(ctx, res.Post, req.BaseURL, form)
		if err != nil {
			return false, err
		}

		res.Sent = true
		return false, nil

	case ActionDeleteComment:
		if err := requireID(sub.ID); err != nil {
			return false, err
		}

		if err := s.store.DeleteActiveComment(ctx, sub.ID); err != nil {
			return false, err
		}

		s.invalidate()
		return false, nil

	default:
		return false, ErrUnknownAction
	}
}

func (s *BlogService) getTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	key := common.CacheKeyTagBySlug(slug)
	if cached, ok := s.c.Get(key); ok {
		return cached.(*Tag), nil
	}

	tag, err := s.store.GetTagBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, tag)
	return tag, nil
}

func (s *BlogService) listTags(ctx context.Context) ([]Tag, error) {
	if cached, ok := s.c.Get(common.CacheKeyTags); ok {
		return cached.([]Tag), nil
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyTags, tags)
	return tags, nil
}

// invalidate drops every cached blog read after a mutation.
func (s *BlogService) invalidate() {
	s.c.DeletePrefix(common.BlogCachePrefix)
}
