package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/infrastructure/memory"
	"github.com/oksasatya/buytoro/pkg/helpers"
	"github.com/oksasatya/buytoro/pkg/mailer"
)

type fakeMedia struct {
	mu       sync.Mutex
	uploaded map[string]string // url -> body
	deleted  []string
}

func newFakeMedia() *fakeMedia { return &fakeMedia{uploaded: map[string]string{}} }

func (m *fakeMedia) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "https://media.test/" + objectPath
	m.uploaded[url] = string(b)
	return url, nil
}

func (m *fakeMedia) DeleteURL(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	delete(m.uploaded, url)
	return nil
}

type fakeMail struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (f *fakeMail) Enqueue(_ context.Context, job mailer.EmailJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeMail) byTemplate(name string) []mailer.EmailJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mailer.EmailJob
	for _, j := range f.jobs {
		if j.Template == name {
			out = append(out, j)
		}
	}
	return out
}

type testEnv struct {
	users    *memory.UserRepository
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	kv       *memory.KV
	media    *fakeMedia
	mail     *fakeMail
	jwt      *helpers.JWTManager
	cfg      *config.Config

	userSvc    *UserService
	productSvc *ProductService
	orderSvc   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		users:    memory.NewUserRepository(),
		products: memory.NewProductRepository(),
		kv:       memory.NewKV(),
		media:    newFakeMedia(),
		mail:     &fakeMail{},
		jwt:      &helpers.JWTManager{Secret: []byte("test-secret"), TTL: time.Hour},
		cfg: &config.Config{
			AppName:          "buytoro",
			CompanyName:      "BuyToro",
			ResetPasswordURL: "http://shop.test/reset-password",
			OrderURL:         "http://shop.test/order",
		},
	}
	e.orders = memory.NewOrderRepository(e.users)
	logger := helpers.NewDiscardLogger()

	e.userSvc = NewUserService(e.users, e.products, e.jwt, logger, e.cfg)
	e.userSvc.Media = e.media
	e.userSvc.KV = e.kv
	e.userSvc.Mail = e.mail
	e.userSvc.Orders = e.orders

	e.productSvc = NewProductService(e.products, logger)
	e.productSvc.Media = e.media

	e.orderSvc = NewOrderService(e.orders, e.products, e.users, logger)
	e.orderSvc.KV = e.kv
	e.orderSvc.Mail = e.mail
	e.orderSvc.Cfg = e.cfg
	return e
}

func (e *testEnv) addUser(t *testing.T, email string, admin bool) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("password123")
	require.NoError(t, err)
	u := &entity.User{Name: "User " + email, Email: email, Password: hash, IsAdmin: admin}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) addProduct(t *testing.T, name string, price float64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:         name,
		Brand:        "Seiko",
		Category:     "Diver",
		Price:        price,
		Images:       []string{"https://img.test/" + name + ".jpg"},
		CountInStock: stock,
	}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func float(v float64) *float64 { return &v }
func intp(v int) *int          { return &v }
