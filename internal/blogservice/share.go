package blogservice

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sushihentaime/myblog/internal/common"
)

// sharePost publishes a post.shared event; the mail service turns it into the email.
func (s *BlogService) sharePost(ctx context.Context, post *Post, baseURL string, form *ShareForm) error {
	event := common.PostSharedEvent{
		To:        form.To,
		Name:      form.Name,
		Email:     form.Email,
		PostTitle: post.Title,
		PostURL:   strings.TrimSuffix(baseURL, "/") + post.Path(),
		Comments:  form.Comments,
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, msg, common.PostSharedKey, common.BlogExchange)
}
