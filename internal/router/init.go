package router

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/internal/container"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	pginfra "github.com/oksasatya/buytoro/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/buytoro/internal/interface/http"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
	"github.com/oksasatya/buytoro/internal/router/modules"
	"github.com/oksasatya/buytoro/pkg/helpers"
	"github.com/oksasatya/buytoro/pkg/mailer"
)

// Deps is what the modules are built from.
type Deps struct {
	Users    *application.UserService
	Products *application.ProductService
	Orders   *application.OrderService
	UserRepo repo.UserRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Logger   *logrus.Logger
	Cfg      *config.Config
}

// Infra holds the optional adapters. Nil fields switch the matching
// feature off.
type Infra struct {
	KV    application.KeyValue
	Media application.MediaStore
	Mail  application.MailQueue
	ES    *elasticsearch.Client
}

// NewServices wires the application services over the given repositories.
func NewServices(users repo.UserRepository, products repo.ProductRepository, orders repo.OrderRepository, jwt *helpers.JWTManager, infra Infra, cfg *config.Config, logger *logrus.Logger) Deps {
	userSvc := application.NewUserService(users, products, jwt, logger, cfg)
	userSvc.Media = infra.Media
	userSvc.KV = infra.KV
	userSvc.Mail = infra.Mail
	userSvc.Orders = orders
	userSvc.ES = infra.ES
	userSvc.ESUsersIndex = cfg.ESUsersIndex

	productSvc := application.NewProductService(products, logger)
	productSvc.Media = infra.Media
	productSvc.Cache = application.NewProductCache(infra.KV, cfg.ProductCacheTTL, logger)
	productSvc.ES = infra.ES
	productSvc.ESProductsIndex = cfg.ESProductsIndex

	orderSvc := application.NewOrderService(orders, products, users, logger)
	orderSvc.KV = infra.KV
	orderSvc.Mail = infra.Mail
	orderSvc.Cfg = cfg

	return Deps{
		Users:    userSvc,
		Products: productSvc,
		Orders:   orderSvc,
		UserRepo: users,
		JWT:      jwt,
		Logger:   logger,
		Cfg:      cfg,
	}
}

// BuildDeps assembles Deps from the container singletons set up by main.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	// Typed nils must not reach the interfaces.
	var infra Infra
	if kv := helpers.NewRedisKV(container.GetRedis()); kv != nil {
		infra.KV = kv
	}
	if media := helpers.NewGCSMedia(container.GetGCS(), cfg.GCSBucket); media != nil {
		infra.Media = media
	}
	if pub := container.GetRabbitPub(); pub != nil {
		infra.Mail = mailer.NewQueue(pub, cfg.MailSendEnabled, logger)
	}
	infra.ES = container.GetES()

	d := NewServices(
		pginfra.NewUserRepository(pool),
		pginfra.NewProductRepository(pool),
		pginfra.NewOrderRepository(pool),
		container.GetJWT(),
		infra,
		cfg,
		logger,
	)
	d.Redis = container.GetRedis()
	return d
}

// InitModules registers every feature module. Call once at startup.
func InitModules(r *Registry, d Deps) {
	guard := modules.Guard{Protect: middleware.Protect(d.UserRepo, d.JWT), RDB: d.Redis}

	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(d.Users, d.Logger),
		handlers.NewAuthHandler(d.Users, d.Logger),
		guard,
	))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(d.Products, d.Logger), guard))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(d.Orders, d.Logger), guard))
	if d.Cfg == nil || d.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
