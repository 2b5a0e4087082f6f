package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/storefrontlabs/catalog-backend/internal/config"
	"github.com/storefrontlabs/catalog-backend/internal/modules/auth"
	"github.com/storefrontlabs/catalog-backend/internal/modules/product"
	"github.com/storefrontlabs/catalog-backend/internal/modules/user"
	"github.com/storefrontlabs/catalog-backend/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("failed to ping database: %v", err)
	}
	logger.Info("database connection established")

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	store := storage.NewLocal(cfg.StorageDir, cfg.StorageBaseURL, logger)

	userRepo := user.NewPostgresRepository(db)
	tokenRepo := auth.NewTokenPostgresRepository(db)
	authService := auth.NewService(userRepo, tokenRepo, cfg.TokenSecret,
		time.Duration(cfg.TokenTTLHours)*time.Hour, logger)
	auth.NewHandler(authService, logger).RegisterRoutes(router)

	productRepo := product.NewPostgresRepository(db, logger)
	reconciler := product.NewReconciler(store, logger)
	productService := product.NewService(productRepo, reconciler, store, logger)
	product.NewHandler(productService, logger).RegisterRoutes(router, authService)

	logger.Infof("catalog API listening on :%s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
