package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/myblog/internal/common"
	"golang.org/x/exp/rand"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	return newMailService(mb, NewMailer(host, port, username, password, sender, NewTemplate()), logger)
}

func newMailService(mb common.MessageConsumer, m Mailer, logger MailLogger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          m,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// email is one message ready to hand to the mailer.
type email struct {
	recipient string
	replyTo   string
	data      any
	template  string
}

// SendActivationEmail mails the activation token of every newly registered author.
func (s *MailService) SendActivationEmail() {
	s.consume(common.AuthorRegisteredKey, common.AuthorRegisteredQueue, "activation email", func(body []byte) (*email, error) {
		var event common.AuthorRegisteredEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, err
		}

		return &email{
			recipient: event.Email,
			data:      activationData{ActivationToken: event.Token},
			template:  ActivationTemplate,
		}, nil
	})
}

// SendShareEmail mails a link to a shared post to the recipient the reader named.
func (s *MailService) SendShareEmail() {
	s.consume(common.PostSharedKey, common.PostSharedQueue, "share email", func(body []byte) (*email, error) {
		var event common.PostSharedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, err
		}

		return &email{
			recipient: event.To,
			replyTo:   event.Email,
			data: shareData{
				Name:      event.Name,
				Email:     event.Email,
				PostTitle: event.PostTitle,
				PostURL:   event.PostURL,
				Comments:  event.Comments,
			},
			template: SharePostTemplate,
		}, nil
	})
}

func (s *MailService) consume(key common.BindingKey, queue common.Queue, kind string, decode func([]byte) (*email, error)) {
	msgs, err := s.mb.Consume(key, common.BlogExchange, queue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("queue", string(queue)), slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				e, err := decode(msg.Body)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("queue", string(queue)), slog.String("error", err.Error()))
					ack(msg)
					continue
				}

				s.deliver(e, kind)
				ack(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping consumer due to context cancellation", slog.String("queue", string(queue)))
				return
			}
		}
	}()
}

// deliver sends e, retrying with exponential backoff and full jitter.
func (s *MailService) deliver(e *email, kind string) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.m.send(e)
		if err == nil {
			s.logger.Info(kind+" sent", slog.String("email", e.recipient))
			return
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying "+kind, slog.String("email", e.recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send "+kind, slog.String("email", e.recipient))
}

func ack(msg amqp.Delivery) {
	if msg.Acknowledger != nil {
		_ = msg.Ack(false)
	}
}

func (s *MailService) Close() {
	s.cancel()
}
