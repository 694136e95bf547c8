package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

type RoomHandler struct {
	rooms services.RoomService
}

func NewRoomHandler(rooms services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

type createRoomReq struct {
	Title           string    `json:"title"`
	JobPosition     string    `json:"job_position"`
	InterviewType   string    `json:"interview_type" binding:"required"`
	InterviewMode   string    `json:"interview_mode"`
	TimeLimit       int       `json:"time_limit"`
	MaxParticipants int       `json:"max_participants"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	CustomQuestions []string  `json:"custom_questions"`
	InterviewerName string    `json:"interviewer_name" binding:"required"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Create", "Missing required fields", err))
		return
	}
	if req.ScheduledTime.IsZero() {
		req.ScheduledTime = time.Now().UTC()
	}

	room, err := h.rooms.Create(c.Request.Context(), services.CreateRoomParams{
		Title:           req.Title,
		JobPosition:     req.JobPosition,
		InterviewType:   req.InterviewType,
		InterviewMode:   req.InterviewMode,
		TimeLimit:       req.TimeLimit,
		MaxParticipants: req.MaxParticipants,
		ScheduledTime:   req.ScheduledTime,
		CustomQuestions: req.CustomQuestions,
		InterviewerID:   userID,
		InterviewerName: req.InterviewerName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, "Room created", room)
}

type joinRoomReq struct {
	RoomID string `json:"room_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Role   string `json:"role"`
}

func (h *RoomHandler) Join(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req joinRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Join", "Missing required fields", err))
		return
	}

	role := models.RoleCandidate
	if req.Role != "" {
		var err error
		role, err = models.ParseRole(req.Role)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Join", "Invalid role", err))
			return
		}
	}

	p, err := h.rooms.Join(c.Request.Context(), req.RoomID, userID, req.Name, role)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Joined room", p.View())
}

func (h *RoomHandler) Info(c *gin.Context) {
	roomID := c.Param("roomId")
	if roomID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Info", "Room id is required", nil))
		return
	}

	info, err := h.rooms.Info(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", info)
}
