package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/buytoro/config"
	mailtpl "github.com/oksasatya/buytoro/pkg/mailer/templates"
)

type fakeSender struct {
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakePublisher struct {
	bodies []any
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{AppName: "buytoro", CompanyName: "BuyToro", OrderURL: "http://shop.test/order", ResetPasswordURL: "http://shop.test/reset"}
}

func encode(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestWorker_RendersOrderUpdate(t *testing.T) {
	cfg := testConfig()
	data := mailtpl.NewOrderUpdateData(cfg, "Ann", "ann@x.com", mailtpl.OrderCancelled, mailtpl.OrderData{
		ID:            "o-42",
		PaymentMethod: "COD",
		Items:         []mailtpl.OrderLine{{Name: "Diver 300", Qty: 2, Price: 500}},
		ItemsPrice:    1000, ShippingPrice: 100, TaxPrice: 20, TotalPrice: 1120,
	})
	sender := &fakeSender{}
	w := NewWorker(sender, nil)

	err := w.Handle(context.Background(), encode(t, EmailJob{To: "ann@x.com", Template: mailtpl.OrderUpdate, Data: data}))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, "Your BuyToro order o-42 is cancelled", m.Subject)
	assert.Contains(t, m.Text, "Your order has been cancelled.")
	assert.Contains(t, m.Text, "Diver 300 x2 @ 500.00")
	assert.Contains(t, m.Text, "Total:    1120.00")
	assert.Contains(t, m.Text, "http://shop.test/order/o-42")
	assert.Contains(t, m.HTML, "Order Cancelled")
	assert.Equal(t, mailtpl.OrderUpdate, m.Tag)
}

func TestWorker_PasswordReset(t *testing.T) {
	data := mailtpl.NewPasswordResetData(testConfig(), "Ann", "ann@x.com", "tok123", time.Hour)
	sender := &fakeSender{}

	require.NoError(t, NewWorker(sender, nil).Handle(context.Background(),
		encode(t, EmailJob{To: "ann@x.com", Template: mailtpl.PasswordReset, Data: data})))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "http://shop.test/reset?token=tok123")
	assert.Equal(t, "Reset your BuyToro password", sender.sent[0].Subject)
}

func TestWorker_PermanentAndRetryableFailures(t *testing.T) {
	w := NewWorker(&fakeSender{}, nil)

	err := w.Handle(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, ErrPermanent)

	err = w.Handle(context.Background(), encode(t, EmailJob{Template: mailtpl.Welcome}))
	assert.ErrorIs(t, err, ErrPermanent)

	err = w.Handle(context.Background(), encode(t, EmailJob{To: "a@x.com", Template: "nope"}))
	assert.ErrorIs(t, err, ErrPermanent)

	down := errors.New("mailgun down")
	w = NewWorker(&fakeSender{err: down}, nil)
	err = w.Handle(context.Background(), encode(t, EmailJob{To: "a@x.com", Subject: "hi", Text: "hello"}))
	require.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestQueue_Enqueue(t *testing.T) {
	pub := &fakePublisher{}
	ctx := context.Background()

	require.NoError(t, NewQueue(pub, false, nil).Enqueue(ctx, EmailJob{To: "a@x.com"}))
	assert.Empty(t, pub.bodies, "disabled queue drops jobs")

	var nilQueue *Queue
	require.NoError(t, nilQueue.Enqueue(ctx, EmailJob{To: "a@x.com"}))

	q := NewQueue(pub, true, nil)
	require.ErrorIs(t, q.Enqueue(ctx, EmailJob{}), ErrNoRecipient)
	require.NoError(t, q.Enqueue(ctx, EmailJob{To: "a@x.com", Template: mailtpl.Welcome}))
	assert.Len(t, pub.bodies, 1)
}

type ackLog struct {
	acked    []uint64
	dropped  []uint64
	requeued []uint64
}

func (a *ackLog) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackLog) Nack(tag uint64, _ bool, requeue bool) error {
	if requeue {
		a.requeued = append(a.requeued, tag)
	} else {
		a.dropped = append(a.dropped, tag)
	}
	return nil
}

func (a *ackLog) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

// downFor fails sends to one recipient.
type downFor string

func (d downFor) Send(_ context.Context, m Message) error {
	if m.To == string(d) {
		return errors.New("connection reset")
	}
	return nil
}

func TestWorker_ConsumeSettlesAndReturnsOnClose(t *testing.T) {
	acks := &ackLog{}
	msgs := make(chan amqp.Delivery, 3)
	job := func(to string) []byte { return encode(t, EmailJob{To: to, Subject: "Hi", Text: "hello"}) }
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 1, Body: job("ann@x.com")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 2, Body: []byte("{nope")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 3, Body: job("down@x.com")}
	close(msgs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewWorker(downFor("down@x.com"), nil).Consume(context.Background(), msgs)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after the deliveries channel closed")
	}

	assert.Equal(t, []uint64{1}, acks.acked)
	assert.Equal(t, []uint64{2}, acks.dropped)
	assert.Equal(t, []uint64{3}, acks.requeued)
}
