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
	"github.com/lanbix/interview-backend/internal/cache"
	"github.com/lanbix/interview-backend/internal/logger"
	"github.com/lanbix/interview-backend/internal/metrics"
	"github.com/lanbix/interview-backend/internal/realtime"
	mongorepo "github.com/lanbix/interview-backend/internal/repositories/mongo"
	"github.com/lanbix/interview-backend/internal/server"
	"github.com/lanbix/interview-backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("room-service")

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

	roomRepo := mongorepo.NewRoomRepo(db)
	participantRepo := mongorepo.NewParticipantRepo(db)

	roomCache := cache.NewRedis(config.RedisClient)
	roomSvc := services.NewRoomService(roomRepo, participantRepo, roomCache)
	participantSvc := services.NewParticipantService(participantRepo)
	lifecycle := services.NewRoomLifecycle(roomRepo, participantRepo, roomCache)

	hub := realtime.NewHub()
	relay := realtime.NewRoomRelay(hub, roomSvc, participantSvc, lifecycle, log)

	reg := metrics.NewRegistry()
	ws := realtime.NewHandler(relay, reg, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware(reg))
	routes.RegisterRoomRoutes(r, routes.Common{Tokens: tokens, Metrics: reg}, handlers.NewRoomHandler(roomSvc), ws)

	cleanup := func(ctx context.Context) {
		// close dangling join records so restarted clients start clean
		if err := participantRepo.MarkAllLeft(ctx, time.Now().UTC()); err != nil {
			log.WithError(err).Warn("participant sweep failed")
		}
	}

	if err := server.Run(log, r, os.Getenv("ROOM_PORT"), cleanup); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
