package templates

import (
	"time"

	"github.com/oksasatya/buytoro/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04")
	}
}

func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresAtText = time.Now().Add(dur).UTC().Format("02 January 2006, 15:04")
	}
}

func WithOrder(o OrderData) Option {
	return func(d *EmailData) { d.Order = &o }
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, WithTime(time.Now())))
}

// NewPasswordResetData builds the reset email; the token is appended to the
// configured reset page URL.
func NewPasswordResetData(cfg *config.Config, name, email, token string, ttl time.Duration) map[string]any {
	d := NewBaseEmailData(cfg, PasswordReset, name, email,
		WithResetURL(cfg.ResetPasswordURL+"?token="+token),
		WithExpiresIn(ttl),
	)
	return ToMap(d)
}

// NewOrderUpdateData builds a lifecycle email for one of OrderPlaced,
// OrderPaid, OrderDelivered or OrderCancelled.
func NewOrderUpdateData(cfg *config.Config, name, email, status string, o OrderData) map[string]any {
	o.Status = status
	if o.URL == "" && cfg.OrderURL != "" {
		o.URL = cfg.OrderURL + "/" + o.ID
	}
	return ToMap(NewBaseEmailData(cfg, OrderUpdate, name, email, WithOrder(o), WithTime(time.Now())))
}
