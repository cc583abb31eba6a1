package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/buytoro/pkg/mailer/templates"
)

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ErrPermanent marks a job that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent email failure")

// Worker renders queued jobs and hands them to a Sender.
type Worker struct {
	Sender  Sender
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger, Timeout: 15 * time.Second}
}

// Render resolves the subject and bodies of a job.
func Render(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}

// Handle processes one raw queue message. Errors wrapping ErrPermanent mean
// the message should be dropped; other errors mean retry later.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: %v", ErrPermanent, ErrNoRecipient)
	}
	subject, text, html, err := Render(job)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
	}

	c, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	msg := Message{To: job.To, Subject: subject, Text: text, HTML: html, Tag: job.Template}
	if err := w.Sender.Send(c, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if w.Logger != nil {
		w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	}
	return nil
}

// Consume handles deliveries until msgs is closed. Successes are acked,
// permanent failures dropped and the rest requeued.
func (w *Worker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for msg := range msgs {
		err := w.Handle(ctx, msg.Body)
		switch {
		case err == nil:
			_ = msg.Ack(false)
		case errors.Is(err, ErrPermanent):
			w.warn(err, "dropping email job")
			_ = msg.Nack(false, false)
		default:
			w.warn(err, "email send failed, requeueing")
			_ = msg.Nack(false, true)
		}
	}
}

func (w *Worker) warn(err error, msg string) {
	if w.Logger != nil {
		w.Logger.WithError(err).Warn(msg)
	}
}
