package models

import "fmt"

// Role is a participant's function inside a session. Parsed once at the
// boundary so downstream code can switch over it exhaustively.
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
	RoleObserver    Role = "observer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCandidate, RoleInterviewer, RoleObserver:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Required reports whether the role counts toward the lifecycle
// transitions (observers never gate start/completion).
func (r Role) Required() bool {
	switch r {
	case RoleCandidate, RoleInterviewer:
		return true
	case RoleObserver:
		return false
	}
	return false
}

type ParticipantStatus string

const (
	ParticipantJoined       ParticipantStatus = "joined"
	ParticipantPending      ParticipantStatus = "pending"
	ParticipantLeft         ParticipantStatus = "left"
	ParticipantDisconnected ParticipantStatus = "disconnected"
)
