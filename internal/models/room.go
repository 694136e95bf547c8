package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoomStatus string

const (
	RoomScheduled RoomStatus = "scheduled"
	RoomActive    RoomStatus = "active"
	RoomCompleted RoomStatus = "completed"
)

type Room struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID string             `bson:"room_id" json:"room_id"` // opaque, externally shareable

	Title           string     `bson:"title" json:"title"`
	JobPosition     string     `bson:"job_position" json:"job_position"`
	InterviewType   string     `bson:"interview_type" json:"interview_type"` // 1-on-1|panel|group
	InterviewMode   string     `bson:"interview_mode" json:"interview_mode"` // audio|video
	TimeLimit       int        `bson:"time_limit" json:"time_limit"`         // minutes
	MaxParticipants int        `bson:"max_participants" json:"max_participants"`
	ScheduledTime   time.Time  `bson:"scheduled_time" json:"scheduled_time"`
	CustomQuestions []string   `bson:"custom_questions,omitempty" json:"custom_questions,omitempty"`
	Status          RoomStatus `bson:"status" json:"status"`

	ParticipantIDs []primitive.ObjectID `bson:"participants" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Participant is the authoritative join/leave record for a (room, user)
// pair. At most one document exists per pair; rejoin updates it in place.
type Participant struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RoomID string             `bson:"room_id" json:"room_id"`
	UserID string             `bson:"user_id" json:"user_id"`

	Name   string            `bson:"name" json:"name"`
	Role   Role              `bson:"role" json:"role"`
	Status ParticipantStatus `bson:"status" json:"status"`

	JoinedAt   *time.Time `bson:"joined_at,omitempty" json:"joined_at,omitempty"`
	LeftAt     *time.Time `bson:"left_at,omitempty" json:"left_at,omitempty"`
	LastActive *time.Time `bson:"last_active,omitempty" json:"last_active,omitempty"`
}

// ParticipantView is the wire shape broadcast in participants-update events.
type ParticipantView struct {
	UserID string            `json:"userId"`
	Name   string            `json:"name"`
	Role   Role              `json:"role"`
	Status ParticipantStatus `json:"status"`
}

func (p *Participant) View() ParticipantView {
	return ParticipantView{UserID: p.UserID, Name: p.Name, Role: p.Role, Status: p.Status}
}
