package mailservice

import (
	"time"

	"github.com/go-mail/mail/v2"
)

const dialTimeout = 5 * time.Second

func NewMailer(host string, port int, username, password, sender string, tp *Template) *Mail {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = dialTimeout

	return &Mail{
		dialer: dialer,
		sender: sender,
		parser: tp,
	}
}

// send renders e's template and delivers it. Replies go to e.replyTo when set.
func (m *Mail) send(e *email) error {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(e.template, e.data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", e.recipient)
	if e.replyTo != "" {
		msg.SetHeader("Reply-To", e.replyTo)
	}
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	if htmlBody.Len() > 0 {
		msg.AddAlternative("text/html", htmlBody.String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dialer.DialAndSend(msg)
}
