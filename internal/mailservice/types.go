package mailservice

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"sync"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/myblog/internal/common"
)

const (
	ActivationTemplate = "activation_email.tmpl"
	SharePostTemplate  = "share_post.tmpl"
)

type MailService struct {
	mb     common.MessageConsumer
	m      Mailer
	logger MailLogger
	ctx    context.Context
	cancel context.CancelFunc

	maxRetries int
	baseDelay  time.Duration
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(e *email) error
}

type Template struct {
	text map[string]*template.Template
	html map[string]*htmltemplate.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// TemplateParser renders the subject, plain text body and optional HTML body of an email.
// A template without an HTML part yields an empty HTML buffer.
type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

type activationData struct {
	ActivationToken string
}

type shareData struct {
	Name      string
	Email     string
	PostTitle string
	PostURL   string
	Comments  string
}
