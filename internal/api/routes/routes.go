package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/api/handlers"
	"github.com/lanbix/interview-backend/internal/api/middleware"
	"github.com/lanbix/interview-backend/internal/auth"
	"github.com/lanbix/interview-backend/internal/metrics"
	"github.com/lanbix/interview-backend/internal/realtime"
)

// Common wires the middleware every service shares.
type Common struct {
	Tokens  *auth.TokenManager
	Metrics *metrics.Registry
}

func (cm Common) base(r *gin.Engine, service string) {
	r.GET("/health", handlers.Health(service))
	r.GET("/metrics", metrics.Handler(cm.Metrics))
}

func RegisterAuthRoutes(r *gin.Engine, cm Common, h *handlers.AuthHandler) {
	cm.base(r, "auth-service")

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	protected := r.Group("/auth", middleware.JWTAuth(cm.Tokens))
	protected.GET("/profile", h.Profile)
	protected.PUT("/profile", h.UpdateProfile)
	protected.POST("/profile/resume", h.UploadResume)
}

func RegisterRoomRoutes(r *gin.Engine, cm Common, h *handlers.RoomHandler, ws *realtime.Handler) {
	cm.base(r, "room-service")

	protected := r.Group("/room", middleware.JWTAuth(cm.Tokens))
	protected.POST("/create", middleware.RequireInterviewer(), h.Create)
	protected.POST("/join", h.Join)
	protected.GET("/info/:roomId", h.Info)

	// WebSocket endpoint; auth happens via join-room payloads
	r.GET("/ws/room", ws.Serve)
}

func RegisterLiveInterviewRoutes(r *gin.Engine, cm Common, h *handlers.LiveInterviewHandler, ws *realtime.Handler) {
	cm.base(r, "live-interview-service")

	protected := r.Group("/live-interview", middleware.JWTAuth(cm.Tokens))
	protected.POST("/create", middleware.RequireInterviewer(), h.Create)
	protected.GET("/history", h.History)
	protected.GET("/:id", h.Get)
	protected.POST("/:id/join", h.Join)
	protected.POST("/:id/leave", h.Leave)
	protected.POST("/:id/end", middleware.RequireInterviewer(), h.End)
	protected.POST("/:id/cancel", middleware.RequireInterviewer(), h.Cancel)
	protected.POST("/:id/questions/generate", middleware.RequireInterviewer(), h.GenerateQuestions)
	protected.POST("/:id/analyze", middleware.RequireInterviewer(), h.Analyze)
	protected.POST("/:id/recording", h.UploadRecording)

	r.GET("/ws/interview", ws.Serve)
}

func RegisterMockInterviewRoutes(r *gin.Engine, cm Common, h *handlers.MockInterviewHandler) {
	cm.base(r, "mock-interview-service")

	protected := r.Group("/mock-interview", middleware.JWTAuth(cm.Tokens))
	protected.POST("/start", h.Start)
	protected.GET("/list", h.List)
	protected.GET("/:id", h.Get)
	protected.POST("/:id/answer", h.Answer)
	protected.POST("/:id/complete", h.Complete)
}
