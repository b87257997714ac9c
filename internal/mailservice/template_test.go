package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	template := NewTemplate()

	testCases := []struct {
		name         string
		templateName string
		data         any
		wantSubject  string
		wantPlain    []string
		wantHTML     bool
		expectedErr  bool
	}{
		{
			name:         "activation",
			templateName: ActivationTemplate,
			data:         activationData{ActivationToken: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
			wantSubject:  "Activate your myblog author account",
			wantPlain:    []string{`{"token": "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}`},
			wantHTML:     true,
		},
		{
			name:         "share with comments",
			templateName: SharePostTemplate,
			data: shareData{
				Name:      "O'Brien",
				Email:     "ob@example.com",
				PostTitle: "Tips & Tricks",
				PostURL:   "https://myblog.com/blog/posts/2024/3/15/tips-tricks",
				Comments:  "A must read",
			},
			wantSubject: `O'Brien (ob@example.com) encourages you to read "Tips & Tricks"`,
			wantPlain: []string{
				`Read post "Tips & Tricks" on page https://myblog.com/blog/posts/2024/3/15/tips-tricks`,
				"Comment added by O'Brien: A must read",
			},
		},
		{
			name:         "share without comments",
			templateName: SharePostTemplate,
			data:         shareData{Name: "Reader", Email: "r@example.com", PostTitle: "Hello", PostURL: "https://myblog.com/x"},
			wantSubject:  `Reader (r@example.com) encourages you to read "Hello"`,
			wantPlain:    []string{`Read post "Hello" on page https://myblog.com/x`},
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.tmpl",
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)
			if err != nil {
				return
			}

			assert.Equal(t, tc.wantSubject, s.String())
			for _, want := range tc.wantPlain {
				assert.Contains(t, p.String(), want)
			}
			assert.NotContains(t, p.String(), "Comment added by Reader")
			assert.Equal(t, tc.wantHTML, h.Len() > 0)
		})
	}
}
