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
	"github.com/lanbix/interview-backend/internal/providers/ai"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/server"
	"github.com/lanbix/interview-backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("mock-interview-service")

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}

	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("index setup failed")
	}
	db := config.MongoDatabase()

	tokens, err := auth.FromEnv()
	if err != nil {
		log.WithError(err).Fatal("jwt config invalid")
	}

	provider := ai.FromEnv(context.Background(), log)
	defer provider.Close()

	mockSvc := services.NewMockInterviewService(mongorepo.NewMockInterviewRepo(db), provider, log)

	reg := metrics.NewRegistry()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware(reg))
	routes.RegisterMockInterviewRoutes(r, routes.Common{Tokens: tokens, Metrics: reg}, handlers.NewMockInterviewHandler(mockSvc))

	if err := server.Run(log, r, os.Getenv("MOCK_INTERVIEW_PORT"), nil); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
