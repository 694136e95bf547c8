package main

import (
	"context"
	"os"
	"time"

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
	"github.com/lanbix/interview-backend/internal/realtime"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/server"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/storage"
	"github.com/lanbix/interview-backend/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("live-interview-service")

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
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

	var store storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSStore(context.Background(), bucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer gcs.Close()
		store = gcs
	}

	interviewRepo := mongorepo.NewLiveInterviewRepo(db)
	participantRepo := mongorepo.NewParticipantRepo(db)

	lifecycle := services.NewInterviewLifecycle(interviewRepo)
	interviewSvc := services.NewLiveInterviewService(interviewRepo, lifecycle, provider, store, log)
	participantSvc := services.NewParticipantService(participantRepo)

	interviewSvc.SetCompletionHook(func(ctx context.Context, interviewID string) {
		if err := workers.EnqueueAnalysis(ctx, config.RedisClient, "", interviewID); err != nil {
			log.WithError(err).WithField("interview_id", interviewID).Warn("failed to enqueue analysis")
		}
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	pool := &workers.AnalysisWorkerPool{
		Redis:      config.RedisClient,
		Interviews: interviewSvc,
		Logger:     log,
	}
	if err := pool.Start(workerCtx); err != nil {
		log.WithError(err).Fatal("analysis workers failed to start")
	}

	hub := realtime.NewHub()
	relay := realtime.NewInterviewRelay(hub, interviewSvc, participantSvc, log)

	reg := metrics.NewRegistry()
	ws := realtime.NewHandler(relay, reg, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware(reg))
	routes.RegisterLiveInterviewRoutes(r, routes.Common{Tokens: tokens, Metrics: reg}, handlers.NewLiveInterviewHandler(interviewSvc), ws)

	cleanup := func(ctx context.Context) {
		now := time.Now().UTC()
		if err := participantRepo.MarkAllLeft(ctx, now); err != nil {
			log.WithError(err).Warn("participant sweep failed")
		}
		if err := interviewRepo.CompleteAllActive(ctx, now); err != nil {
			log.WithError(err).Warn("interview sweep failed")
		}
	}

	if err := server.Run(log, r, os.Getenv("LIVE_INTERVIEW_PORT"), cleanup); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
