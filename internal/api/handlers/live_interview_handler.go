package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/services"
	"github.com/lanbix/interview-backend/internal/utils"
)

type LiveInterviewHandler struct {
	interviews services.LiveInterviewService
}

func NewLiveInterviewHandler(interviews services.LiveInterviewService) *LiveInterviewHandler {
	return &LiveInterviewHandler{interviews: interviews}
}

type createInterviewReq struct {
	Title           string    `json:"title" binding:"required"`
	JobPosition     string    `json:"job_position"`
	Company         string    `json:"company"`
	InterviewType   string    `json:"interview_type"`
	Language        string    `json:"language"`
	JobDescription  string    `json:"job_description"`
	MeetingLink     string    `json:"meeting_link"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	CandidateID     string    `json:"candidate_id" binding:"required"`
	CandidateName   string    `json:"candidate_name"`
	CandidateEmail  string    `json:"candidate_email"`
	CandidateResume string    `json:"candidate_resume"`
	InterviewerName string    `json:"interviewer_name"`
	AIEnabled       bool      `json:"ai_enabled"`
}

func (h *LiveInterviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.Create", "Missing required fields", err))
		return
	}
	if req.ScheduledTime.IsZero() {
		req.ScheduledTime = time.Now().UTC()
	}

	li, err := h.interviews.Create(c.Request.Context(), services.CreateLiveInterviewParams{
		Title:           req.Title,
		JobPosition:     req.JobPosition,
		Company:         req.Company,
		InterviewType:   req.InterviewType,
		Language:        req.Language,
		JobDescription:  req.JobDescription,
		MeetingLink:     req.MeetingLink,
		ScheduledTime:   req.ScheduledTime,
		CandidateID:     req.CandidateID,
		CandidateName:   req.CandidateName,
		CandidateEmail:  req.CandidateEmail,
		CandidateResume: req.CandidateResume,
		InterviewerID:   userID,
		InterviewerName: req.InterviewerName,
		AIEnabled:       req.AIEnabled,
		CreatedBy:       userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, "Interview created", li)
}

func (h *LiveInterviewHandler) Get(c *gin.Context) {
	li, err := h.interviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", li)
}

type joinInterviewReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *LiveInterviewHandler) Join(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req joinInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.Join", "Role is required", err))
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.Join", "Invalid role", err))
		return
	}

	ev, err := h.interviews.Join(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Joined interview", ev.Interview)
}

func (h *LiveInterviewHandler) Leave(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req joinInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.Leave", "Role is required", err))
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.Leave", "Invalid role", err))
		return
	}

	ev, err := h.interviews.Leave(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Left interview", ev.Interview)
}

type endInterviewReq struct {
	InterviewerNotes string `json:"interviewer_notes"`
	Feedback         string `json:"feedback"`
	FinalVerdict     string `json:"final_verdict"`
}

func (h *LiveInterviewHandler) End(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req endInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.End", "Invalid request body", err))
		return
	}

	li, err := h.interviews.End(c.Request.Context(), services.EndInterviewParams{
		InterviewID:      c.Param("id"),
		InterviewerNotes: req.InterviewerNotes,
		Feedback:         req.Feedback,
		FinalVerdict:     req.FinalVerdict,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Interview ended", li)
}

func (h *LiveInterviewHandler) Cancel(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	li, err := h.interviews.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Interview cancelled", li)
}

type generateQuestionsReq struct {
	Count int `json:"count"`
}

func (h *LiveInterviewHandler) GenerateQuestions(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req generateQuestionsReq
	_ = c.ShouldBindJSON(&req)

	qs, err := h.interviews.GenerateQuestions(c.Request.Context(), c.Param("id"), req.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", gin.H{"questions": qs})
}

func (h *LiveInterviewHandler) Analyze(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	analysis, err := h.interviews.AnalyzePerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", analysis)
}

func (h *LiveInterviewHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var role models.Role
	if s := c.Query("role"); s != "" {
		var err error
		role, err = models.ParseRole(s)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.History", "Invalid role", err))
			return
		}
	}

	res, err := h.interviews.History(c.Request.Context(), services.HistoryParams{
		UserID: userID,
		Role:   role,
		Status: models.InterviewStatus(c.Query("status")),
		Limit:  limit,
		Page:   page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "", res)
}

func (h *LiveInterviewHandler) UploadRecording(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	kind := c.DefaultQuery("kind", "screen")
	file, header, err := c.Request.FormFile("recording")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveInterviewHandler.UploadRecording", "Recording file is required", err))
		return
	}
	defer file.Close()

	url, err := h.interviews.SaveRecording(c.Request.Context(), c.Param("id"), kind, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, "Recording uploaded", gin.H{"url": url})
}
