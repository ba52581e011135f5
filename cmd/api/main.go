package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/cafemenu/cafemenu-backend/api/routes"
	authsvc "github.com/cafemenu/cafemenu-backend/internal/auth"
	"github.com/cafemenu/cafemenu-backend/internal/categories"
	"github.com/cafemenu/cafemenu-backend/internal/cleanup"
	"github.com/cafemenu/cafemenu-backend/internal/menuitems"
	"github.com/cafemenu/cafemenu-backend/internal/places"
	"github.com/cafemenu/cafemenu-backend/internal/uploads"
	"github.com/cafemenu/cafemenu-backend/internal/users"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
	"github.com/cafemenu/cafemenu-backend/pkg/metrics"
	"github.com/cafemenu/cafemenu-backend/pkg/migrate"
	"github.com/cafemenu/cafemenu-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis only backs the login rate limiter; without a URL the API runs
	// unlimited.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	placeRepo := places.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	itemRepo := menuitems.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	if err := users.EnsureDefaultSystemAdmin(context.Background(), userRepo, cfg.Bootstrap, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "failed to seed default system admin", err)
		os.Exit(1)
	}

	placeService, err := places.NewService(placeRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create place service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(categoryRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	itemService, err := menuitems.NewService(itemRepo, dbClient, categoryRepo, placeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu item service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, dbClient, placeRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	authService, err := authsvc.NewService(userRepo, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	uploadService, err := uploads.NewService(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}
	cleanupService, err := cleanup.NewService(itemRepo, categoryRepo, userRepo, dbClient, uploadService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	if cfg.FeatureFlags.LegacyOpenMutations {
		logg.Warn(ctx, "legacy open mutations enabled; catalog writes accept anonymous callers")
	}
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, metrics.NewHTTPMetrics(), userRepo, routes.Services{
			Auth:       authService,
			Places:     placeService,
			Categories: categoryService,
			MenuItems:  itemService,
			Users:      userService,
			Uploads:    uploadService,
			Cleanup:    cleanupService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
