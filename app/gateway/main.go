package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lanbix/interview-backend/config"
	"github.com/lanbix/interview-backend/internal/api/middleware"
	"github.com/lanbix/interview-backend/internal/gateway"
	"github.com/lanbix/interview-backend/internal/logger"
	"github.com/lanbix/interview-backend/internal/metrics"
	"github.com/lanbix/interview-backend/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	log := logger.New("gateway")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}

	routes := []gateway.Route{
		{Prefix: "/auth", Target: env("AUTH_SERVICE_URL", "http://localhost:8081"), Rule: gateway.RuleAuth},
		{Prefix: "/room", Target: env("ROOM_SERVICE_URL", "http://localhost:8082"), Rule: gateway.RuleAPI},
		{Prefix: "/live-interview", Target: env("LIVE_INTERVIEW_SERVICE_URL", "http://localhost:8083"), Rule: gateway.RuleInterview},
		{Prefix: "/mock-interview", Target: env("MOCK_INTERVIEW_SERVICE_URL", "http://localhost:8084"), Rule: gateway.RuleInterview},
	}

	counter := gateway.NewRedisCounter(config.RedisClient)
	dispatcher := gateway.NewDispatcher(routes, counter, log)

	reg := metrics.NewRegistry()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware(reg))
	r.GET("/health", gateway.Health("gateway"))
	r.GET("/metrics", metrics.Handler(reg))

	if err := dispatcher.Register(r); err != nil {
		log.WithError(err).Fatal("invalid routing table")
	}

	if err := server.Run(log, r, os.Getenv("GATEWAY_PORT"), nil); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
