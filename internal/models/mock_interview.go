package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockStatus string

const (
	MockCreated    MockStatus = "created"
	MockInProgress MockStatus = "in_progress"
	MockCompleted  MockStatus = "completed"
	MockEvaluated  MockStatus = "evaluated"
)

type MockQuestion struct {
	Text        string   `bson:"text" json:"text"`
	Keywords    []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
	IdealAnswer string   `bson:"ideal_answer,omitempty" json:"idealAnswer,omitempty"`
}

type MockAnswer struct {
	QuestionID int       `bson:"question_id" json:"questionId"` // index into Questions
	AnswerText string    `bson:"answer_text" json:"answerText"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

type QuestionFeedback struct {
	Score    float64 `bson:"score" json:"score"` // 1-10
	Feedback string  `bson:"feedback" json:"feedback"`
}

type MockInterview struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"user_id" json:"user_id"`

	Position      string `bson:"position" json:"position"`
	Level         string `bson:"level" json:"level"` // easy|medium|hard
	QuestionCount int    `bson:"question_count" json:"question_count"`

	Questions []MockQuestion `bson:"questions" json:"questions"`
	Answers   []MockAnswer   `bson:"answers" json:"answers"`

	StartTime time.Time  `bson:"start_time" json:"start_time"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	OverallScore     float64            `bson:"overall_score,omitempty" json:"overall_score,omitempty"` // 0-100
	OverallFeedback  string             `bson:"overall_feedback,omitempty" json:"overall_feedback,omitempty"`
	QuestionFeedback []QuestionFeedback `bson:"question_feedback,omitempty" json:"question_feedback,omitempty"`

	Status MockStatus `bson:"status" json:"status"`
}
