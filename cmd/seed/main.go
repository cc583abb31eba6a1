package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	pginfra "github.com/oksasatya/buytoro/internal/infrastructure/postgres"
	"github.com/oksasatya/buytoro/pkg/helpers"
)

// Seeds an admin account and a starter watch catalog. Safe to re-run: the
// admin is left alone when it exists and products are only added to an
// empty catalog.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	users := pginfra.NewUserRepository(pool)
	products := pginfra.NewProductRepository(pool)

	email := envOr("SEED_ADMIN_EMAIL", "admin@buytoro.local")
	password := envOr("SEED_ADMIN_PASSWORD", "password123")
	if err := seedAdmin(ctx, users, email, password); err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithField("email", email).Info("admin ready")

	n, err := seedProducts(ctx, products)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed products")
	}
	logger.WithFields(logrus.Fields{"created": n}).Info("catalog seeded")

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to create elasticsearch client")
		}
		svc := application.NewProductService(products, logger)
		svc.ES = es
		svc.ESProductsIndex = cfg.ESProductsIndex
		indexed, err := svc.Reindex(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to index catalog")
		}
		logger.WithField("indexed", indexed).Info("search index rebuilt")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func seedAdmin(ctx context.Context, users repo.UserRepository, email, password string) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Create(ctx, &entity.User{Name: "Admin", Email: email, Password: hash, IsAdmin: true})
}

func seedProducts(ctx context.Context, products repo.ProductRepository) (int, error) {
	_, total, err := products.List(ctx, repo.ProductFilter{Limit: 1})
	if err != nil || total > 0 {
		return 0, err
	}
	discount := func(v float64) *float64 { return &v }
	catalog := []*entity.Product{
		{Name: "Prospex Diver 200m", Brand: "Seiko", Category: "Diver", Price: 4200, DiscountPrice: discount(3900), CountInStock: 12,
			Description: "Automatic diver with a unidirectional bezel and 200m water resistance."},
		{Name: "Presage Cocktail Time", Brand: "Seiko", Category: "Dress", Price: 3600, CountInStock: 7,
			Description: "Sunburst dial dress watch on a leather strap."},
		{Name: "Eco-Drive Promaster", Brand: "Citizen", Category: "Field", Price: 2800, CountInStock: 15,
			Description: "Light-powered field watch, no battery changes."},
		{Name: "Tissot PRX Quartz", Brand: "Tissot", Category: "Sport", Price: 5400, DiscountPrice: discount(5100), CountInStock: 5,
			Description: "Integrated bracelet, 40mm steel case."},
		{Name: "Casio G-Shock GA-2100", Brand: "Casio", Category: "Sport", Price: 1100, CountInStock: 30,
			Description: "Carbon core guard structure, shock resistant."},
		{Name: "Orient Bambino", Brand: "Orient", Category: "Dress", Price: 1500, CountInStock: 0,
			Description: "Domed crystal classic automatic."},
	}
	for _, p := range catalog {
		p.Images = []string{"https://placehold.co/600x600?text=" + p.Brand}
		if err := products.Create(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(catalog), nil
}
