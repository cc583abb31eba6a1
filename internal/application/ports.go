package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/buytoro/pkg/mailer"
)

// KeyValue is the slice of Redis the services rely on. helpers.RedisKV
// implements it; a nil KeyValue disables the features built on it.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, key string) error
}

// MediaStore keeps product and profile images. helpers.GCSMedia implements it.
type MediaStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	DeleteURL(ctx context.Context, url string) error
}

// MailQueue is satisfied by *mailer.Queue.
type MailQueue interface {
	Enqueue(ctx context.Context, job mailer.EmailJob) error
}

// Upload is one file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
