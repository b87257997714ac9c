package blogservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/myblog/internal/common"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "Hello, World!", want: "hello-world"},
		{input: "  Django   Tips  ", want: "django-tips"},
		{input: "Go 1.22 released", want: "go-1-22-released"},
		{input: "!!!", want: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, slugify(tc.input), tc.input)
	}
}

func TestCommentFormValidate(t *testing.T) {
	testCases := []struct {
		name string
		form CommentForm
		want map[string]string
	}{
		{
			name: "valid",
			form: CommentForm{Name: "Reader", Email: "reader@example.com", Body: "Nice"},
			want: map[string]string{},
		},
		{
			name: "name too long",
			form: CommentForm{Name: strings.Repeat("a", 26), Email: "reader@example.com", Body: "Nice"},
			want: map[string]string{"name": "must not be more than 25 characters long"},
		},
		{
			name: "missing email",
			form: CommentForm{Name: "Reader", Body: "Nice"},
			want: map[string]string{"email": "must be provided"},
		},
		{
			name: "body too long",
			form: CommentForm{Name: "Reader", Email: "reader@example.com", Body: strings.Repeat("é", 2001)},
			want: map[string]string{"body": "must not be more than 2000 characters long"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			tc.form.clean()
			tc.form.validate(v)
			assert.Equal(t, tc.want, v.Errors)
		})
	}
}

func TestPostFormValidate(t *testing.T) {
	choices := []string{"go", "web"}

	testCases := []struct {
		name string
		form PostForm
		want map[string]string
	}{
		{
			name: "valid",
			form: PostForm{Title: "Hello", Body: "World", Tags: []string{"go", "web"}},
			want: map[string]string{},
		},
		{
			name: "no tags",
			form: PostForm{Title: "Hello", Body: "World"},
			want: map[string]string{},
		},
		{
			name: "title too long",
			form: PostForm{Title: strings.Repeat("t", 101), Body: "World"},
			want: map[string]string{"title": "must not be more than 100 characters long"},
		},
		{
			name: "title without a slug",
			form: PostForm{Title: "???", Body: "World"},
			want: map[string]string{"title": "must contain at least one letter or number"},
		},
		{
			name: "unknown tag",
			form: PostForm{Title: "Hello", Body: "World", Tags: []string{"go", "rust"}},
			want: map[string]string{"tags": "select a valid choice, rust is not one of the available choices"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			tc.form.clean()
			tc.form.validate(v, choices)
			assert.Equal(t, tc.want, v.Errors)
		})
	}
}

func TestShareFormValidate(t *testing.T) {
	testCases := []struct {
		name string
		form ShareForm
		want map[string]string
	}{
		{
			name: "valid without comments",
			form: ShareForm{Name: "Reader", Email: "reader@example.com", To: "friend@example.com"},
			want: map[string]string{},
		},
		{
			name: "padded addresses",
			form: ShareForm{Name: " Reader ", Email: " reader@example.com", To: "friend@example.com "},
			want: map[string]string{},
		},
		{
			name: "missing everything",
			form: ShareForm{},
			want: map[string]string{
				"name":  "must be provided",
				"email": "must be provided",
				"to":    "must be provided",
			},
		},
		{
			name: "comments too long",
			form: ShareForm{Name: "Reader", Email: "reader@example.com", To: "friend@example.com", Comments: strings.Repeat("c", 2001)},
			want: map[string]string{"comments": "must not be more than 2000 characters long"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			tc.form.clean()
			tc.form.validate(v)
			assert.Equal(t, tc.want, v.Errors)
		})
	}
}
