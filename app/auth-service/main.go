package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lanbix/interview-backend/config"
	"github.com/lanbix/interview-backend/internal/api/handlers"
	"github.com/lanbix/interview-backend/internal/api/middleware"
	"github.com/lanbix/interview-backend/internal/api/routes"
	"github.com/lanbix/interview-backend/internal/auth"
	"github.com/lanbix/interview-backend/internal/logger"
	"github.com/lanbix/interview-backend/internal/metrics"
	"github.com/lanbix/interview-backend/internal/repositories/postgres"
	"github.com/lanbix/interview-backend/internal/server"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("auth-service")

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}

	tokens, err := auth.FromEnv()
	if err != nil {
		log.WithError(err).Fatal("jwt config invalid")
	}

	var store storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSStore(context.Background(), bucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer gcs.Close()
		store = gcs
	}

	users := postgres.NewUserRepo(config.PostgresDB)
	authSvc := services.NewAuthService(users, tokens, store, log)

	reg := metrics.NewRegistry()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware(reg))
	routes.RegisterAuthRoutes(r, routes.Common{Tokens: tokens, Metrics: reg}, handlers.NewAuthHandler(authSvc))

	if err := server.Run(log, r, os.Getenv("AUTH_PORT"), nil); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
