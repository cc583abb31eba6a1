package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject/Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // see templates.Welcome, templates.PasswordReset, templates.OrderUpdate
	Data     map[string]any `json:"data,omitempty"`
}

var ErrNoRecipient = errors.New("email job has no recipient")

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue enqueues email jobs when sending is enabled. A nil *Queue, or one
// without a publisher, drops jobs silently.
type Queue struct {
	Pub     Publisher
	Enabled bool
	Logger  *logrus.Logger
}

func NewQueue(pub Publisher, enabled bool, logger *logrus.Logger) *Queue {
	return &Queue{Pub: pub, Enabled: enabled, Logger: logger}
}

func (q *Queue) Enqueue(ctx context.Context, job EmailJob) error {
	if q == nil || !q.Enabled || q.Pub == nil {
		return nil
	}
	if job.To == "" {
		return ErrNoRecipient
	}
	if err := q.Pub.PublishJSON(ctx, job); err != nil {
		if q.Logger != nil {
			q.Logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("enqueue email failed")
		}
		return err
	}
	return nil
}
