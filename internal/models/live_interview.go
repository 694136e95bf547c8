package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewActive    InterviewStatus = "active"
	InterviewPaused    InterviewStatus = "paused"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transition may fire.
func (s InterviewStatus) Terminal() bool {
	return s == InterviewCompleted || s == InterviewCancelled
}

// InterviewParticipant is the embedded per-role summary on a live
// interview. Join/leave timestamps on these two summaries drive the
// lifecycle transitions.
type InterviewParticipant struct {
	UserID   string     `bson:"user_id" json:"userId"`
	Name     string     `bson:"name" json:"name"`
	Email    string     `bson:"email" json:"email"`
	Resume   string     `bson:"resume,omitempty" json:"resume,omitempty"`
	JoinedAt *time.Time `bson:"joined_at,omitempty" json:"joinedAt,omitempty"`
	LeftAt   *time.Time `bson:"left_at,omitempty" json:"leftAt,omitempty"`
}

// Question is created on ask and mutated exactly once when the candidate
// responds. Never deleted.
type Question struct {
	QuestionID        string    `bson:"question_id" json:"questionId"`
	Question          string    `bson:"question" json:"question"`
	Category          string    `bson:"category" json:"category"`     // technical|behavioral|general
	Difficulty        string    `bson:"difficulty" json:"difficulty"` // easy|medium|hard
	AskedBy           string    `bson:"asked_by" json:"askedBy"`
	AskedAt           time.Time `bson:"asked_at" json:"askedAt"`
	CandidateResponse string    `bson:"candidate_response,omitempty" json:"candidateResponse,omitempty"`
	ResponseTime      float64   `bson:"response_time,omitempty" json:"responseTime,omitempty"` // seconds
	AISuggestion      string    `bson:"ai_suggestion,omitempty" json:"aiSuggestion,omitempty"`
	Score             float64   `bson:"score,omitempty" json:"score,omitempty"` // 0-10
	Feedback          string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

type SpeechLog struct {
	LogID     string         `bson:"log_id" json:"id"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Action    string         `bson:"action" json:"action"`
	Text      string         `bson:"text,omitempty" json:"text,omitempty"`
	Details   map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	User      string         `bson:"user" json:"user"`
	Role      Role           `bson:"role" json:"role"`
}

type AIResponse struct {
	Question        string    `bson:"question" json:"question"`
	CandidateAnswer string    `bson:"candidate_answer,omitempty" json:"candidateAnswer,omitempty"`
	AISuggestion    string    `bson:"ai_suggestion" json:"aiSuggestion"`
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	Confidence      float64   `bson:"confidence" json:"confidence"` // 0-1
}

type AIAssistance struct {
	Enabled   bool         `bson:"enabled" json:"enabled"`
	Model     string       `bson:"model" json:"model"`
	Responses []AIResponse `bson:"responses" json:"responses"`
}

type Performance struct {
	TotalQuestions      int      `bson:"total_questions" json:"totalQuestions"`
	AnsweredQuestions   int      `bson:"answered_questions" json:"answeredQuestions"`
	AverageResponseTime float64  `bson:"average_response_time" json:"averageResponseTime"`
	AverageScore        float64  `bson:"average_score" json:"averageScore"`
	Strengths           []string `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Weaknesses          []string `bson:"weaknesses,omitempty" json:"weaknesses,omitempty"`
	OverallRating       float64  `bson:"overall_rating,omitempty" json:"overallRating,omitempty"` // 1-10
}

type Recording struct {
	Enabled  bool    `bson:"enabled" json:"enabled"`
	URL      string  `bson:"url,omitempty" json:"url,omitempty"`
	Duration float64 `bson:"duration,omitempty" json:"duration,omitempty"`
}

type LiveInterview struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	InterviewID string             `bson:"interview_id" json:"interviewId"`

	Title         string `bson:"title" json:"title"`
	JobPosition   string `bson:"job_position" json:"jobPosition"`
	Company       string `bson:"company" json:"company"`
	InterviewType string `bson:"interview_type" json:"interviewType"` // technical|behavioral|mixed
	Language      string `bson:"language" json:"language"`

	Candidate   InterviewParticipant `bson:"candidate" json:"candidate"`
	Interviewer InterviewParticipant `bson:"interviewer" json:"interviewer"`

	JobDescription string    `bson:"job_description,omitempty" json:"jobDescription,omitempty"`
	MeetingLink    string    `bson:"meeting_link,omitempty" json:"meetingLink,omitempty"`
	ScheduledTime  time.Time `bson:"scheduled_time" json:"scheduledTime"`

	StartedAt *time.Time `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
	Duration  int        `bson:"duration,omitempty" json:"duration,omitempty"` // minutes

	Status InterviewStatus `bson:"status" json:"status"`

	ScreenRecording Recording `bson:"screen_recording" json:"screenRecording"`
	AudioRecording  Recording `bson:"audio_recording" json:"audioRecording"`

	AIAssistance AIAssistance `bson:"ai_assistance" json:"aiAssistance"`
	Questions    []Question   `bson:"questions" json:"questions"`
	Performance  Performance  `bson:"performance" json:"performance"`
	SpeechLogs   []SpeechLog  `bson:"speech_logs,omitempty" json:"speechLogs,omitempty"`

	InterviewerNotes  string `bson:"interviewer_notes,omitempty" json:"interviewerNotes,omitempty"`
	CandidateFeedback string `bson:"candidate_feedback,omitempty" json:"candidateFeedback,omitempty"`
	FinalVerdict      string `bson:"final_verdict,omitempty" json:"finalVerdict,omitempty"` // pass|fail|consider|strong_pass

	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ParticipantByRole returns the embedded summary for a required role, or
// nil for observers.
func (li *LiveInterview) ParticipantByRole(r Role) *InterviewParticipant {
	switch r {
	case RoleCandidate:
		return &li.Candidate
	case RoleInterviewer:
		return &li.Interviewer
	case RoleObserver:
		return nil
	}
	return nil
}

// FindQuestion returns the question with the given id, or nil.
func (li *LiveInterview) FindQuestion(questionID string) *Question {
	for i := range li.Questions {
		if li.Questions[i].QuestionID == questionID {
			return &li.Questions[i]
		}
	}
	return nil
}

// MaxSpeechLogs bounds the embedded speech log array; only the most
// recent entries are retained.
const MaxSpeechLogs = 1000
