package blogservice

import (
	"strings"

	"github.com/sushihentaime/myblog/internal/common"
)

// Action selects which form a submission carries.
type Action string

const (
	ActionSearch        Action = "search"
	ActionComment       Action = "comment"
	ActionTag           Action = "tag"
	ActionPost          Action = "post"
	ActionShare         Action = "share"
	ActionDeletePost    Action = "delete_post"
	ActionDeleteComment Action = "delete_comment"
)

const (
	SearchFormName  = "search_form"
	CommentFormName = "comment_form"
	TagFormName     = "tag_form"
	PostFormName    = "post_form"
	ShareFormName   = "share_form"
)

// Submission is one submitted form. Action decides which of the payloads is read;
// ID is the target of the delete actions.
type Submission struct {
	Action  Action       `json:"action"`
	Search  *SearchForm  `json:"search,omitempty"`
	Comment *CommentForm `json:"comment,omitempty"`
	Tag     *TagForm     `json:"tag,omitempty"`
	Post    *PostForm    `json:"post,omitempty"`
	Share   *ShareForm   `json:"share,omitempty"`
	ID      int          `json:"id,omitempty"`
}

// FormState is what a page shows for one form: its values, field errors and, for the post form, tag choices.
type FormState struct {
	Fields  any               `json:"fields"`
	Errors  map[string]string `json:"errors,omitempty"`
	Choices []string          `json:"choices,omitempty"`
}

type Forms map[string]*FormState

func boundForm(fields any, v *common.Validator) *FormState {
	fs := &FormState{Fields: fields}
	if !v.Valid() {
		fs.Errors = v.Errors
	}
	return fs
}

type SearchForm struct {
	Query string `json:"query"`
}

func (f *SearchForm) clean() {
	f.Query = strings.TrimSpace(f.Query)
}

func (f *SearchForm) validate(v *common.Validator) {
	validateRequired(v, f.Query, "query")
}

type CommentForm struct {
	PostID int    `json:"post_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

func (f *CommentForm) clean() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Body = strings.TrimSpace(f.Body)
}

func (f *CommentForm) validate(v *common.Validator) {
	validateRequired(v, f.Name, "name")
	validateMaxLength(v, f.Name, "name", 25)
	validateEmail(v, f.Email, "email")
	validateRequired(v, f.Body, "body")
	validateMaxLength(v, f.Body, "body", 2000)
}

type TagForm struct {
	Name string `json:"name"`
}

func (f *TagForm) clean() {
	f.Name = strings.TrimSpace(f.Name)
}

func (f *TagForm) validate(v *common.Validator) {
	validateRequired(v, f.Name, "name")
	validateMaxLength(v, f.Name, "name", 30)
	validateSluggable(v, f.Name, "name")
}

type PostForm struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

func (f *PostForm) clean() {
	f.Title = strings.TrimSpace(f.Title)
	f.Body = strings.TrimSpace(f.Body)
}

func (f *PostForm) validate(v *common.Validator, choices []string) {
	validateRequired(v, f.Title, "title")
	validateMaxLength(v, f.Title, "title", 100)
	validateSluggable(v, f.Title, "title")
	validateRequired(v, f.Body, "body")
	validateMaxLength(v, f.Body, "body", 2000)
	validateTagChoices(v, f.Tags, choices)
}

type ShareForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	To       string `json:"to"`
	Comments string `json:"comments"`
}

func (f *ShareForm) clean() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.To = strings.TrimSpace(f.To)
	f.Comments = strings.TrimSpace(f.Comments)
}

func (f *ShareForm) validate(v *common.Validator) {
	validateRequired(v, f.Name, "name")
	validateMaxLength(v, f.Name, "name", 25)
	validateEmail(v, f.Email, "email")
	validateEmail(v, f.To, "to")
	validateMaxLength(v, f.Comments, "comments", 2000)
}

func tagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
