package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UserType string

const (
	UserCandidate   UserType = "candidate"
	UserInterviewer UserType = "interviewer"
	UserAdmin       UserType = "admin"
)

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

type User struct {
	ID    string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email string `gorm:"column:email;type:text;uniqueIndex" json:"email"`

	// bcrypt hash; never serialized
	PasswordHash string `gorm:"column:password_hash;type:text" json:"-"`

	FirstName string `gorm:"column:first_name;type:text" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:text" json:"last_name"`

	UserType UserType     `gorm:"column:user_type;type:text;index" json:"user_type"`
	Provider AuthProvider `gorm:"column:provider;type:text" json:"provider"`
	GoogleID string       `gorm:"column:google_id;type:text" json:"-"`

	PhoneNumber    string `gorm:"column:phone_number;type:text" json:"phone_number,omitempty"`
	ProfilePicture string `gorm:"column:profile_picture;type:text" json:"profile_picture,omitempty"`
	ResumeURL      string `gorm:"column:resume_url;type:text" json:"resume_url,omitempty"`

	// bio, location, links, notification preferences
	Profile datatypes.JSON `gorm:"column:profile;type:jsonb" json:"profile,omitempty"`

	Skills    pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`
	Expertise pq.StringArray `gorm:"column:expertise;type:text[]" json:"expertise,omitempty"`

	IsActive      bool `gorm:"column:is_active;default:true" json:"is_active"`
	EmailVerified bool `gorm:"column:email_verified;default:false" json:"email_verified"`

	LoginAttempts int        `gorm:"column:login_attempts;default:0" json:"-"`
	LockUntil     *time.Time `gorm:"column:lock_until" json:"-"`
	LastLogin     *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Locked reports whether the account is currently locked out after too
// many failed logins.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
