package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

type MockInterviewHandler struct {
	mocks services.MockInterviewService
}

func NewMockInterviewHandler(mocks services.MockInterviewService) *MockInterviewHandler {
	return &MockInterviewHandler{mocks: mocks}
}

type startMockReq struct {
	Position      string `json:"position" binding:"required"`
	Level         string `json:"level"`
	QuestionCount int    `json:"question_count"`
}

func (h *MockInterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req startMockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MockInterviewHandler.Start", "Position is required", err))
		return
	}

	mi, err := h.mocks.Start(c.Request.Context(), services.StartMockParams{
		UserID:        userID,
		Position:      req.Position,
		Level:         req.Level,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, "Mock interview started", mi)
}

func (h *MockInterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	mi, err := h.mocks.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", mi)
}

type mockAnswerReq struct {
	QuestionIndex *int   `json:"question_index" binding:"required"`
	AnswerText    string `json:"answer_text" binding:"required"`
}

func (h *MockInterviewHandler) Answer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req mockAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MockInterviewHandler.Answer", "Missing required fields", err))
		return
	}

	mi, err := h.mocks.Answer(c.Request.Context(), userID, c.Param("id"), *req.QuestionIndex, req.AnswerText)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Answer recorded", mi)
}

func (h *MockInterviewHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	mi, err := h.mocks.Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Mock interview completed", mi)
}

func (h *MockInterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.mocks.List(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", gin.H{"interviews": items})
}
