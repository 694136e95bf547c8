package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/lanbix/interview-backend/internal/auth"
	"github.com/lanbix/interview-backend/internal/models"
	"github.com/lanbix/interview-backend/internal/repositories/postgres"
	"github.com/lanbix/interview-backend/internal/storage"
	"github.com/lanbix/interview-backend/internal/utils"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 2 * time.Hour
)

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	UserType  models.UserType
}

type UpdateProfileParams struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Skills      []string
	Expertise   []string
	Profile     map[string]any
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, p RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p UpdateProfileParams) (*models.User, error)
	UploadResume(ctx context.Context, userID, contentType string, r io.Reader) (string, error)
}

type authService struct {
	users  postgres.UserRepository
	tokens *auth.TokenManager
	store  storage.Uploader
	log    *logrus.Logger
}

func NewAuthService(users postgres.UserRepository, tokens *auth.TokenManager, store storage.Uploader, log *logrus.Logger) AuthService {
	return &authService{users: users, tokens: tokens, store: store, log: log}
}

func (s *authService) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	const op = "AuthService.Register"

	if p.Email == "" || p.Password == "" || p.FirstName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	if len(p.Password) < 8 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Password must be at least 8 characters", nil)
	}
	switch p.UserType {
	case models.UserCandidate, models.UserInterviewer:
	case "":
		p.UserType = models.UserCandidate
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid user type", nil)
	}

	if _, err := s.users.GetByEmail(ctx, p.Email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "Email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		UserType:     p.UserType,
		Provider:     models.ProviderLocal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.tokens.Issue(u, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "user_type": u.UserType}).Info("user registered")
	return &AuthResult{User: u, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	now := time.Now().UTC()
	if u.Locked(now) {
		return nil, utils.E(utils.CodeForbidden, op, "Account temporarily locked. Try again later", nil)
	}
	if !u.IsActive {
		return nil, utils.E(utils.CodeForbidden, op, "Account is deactivated", nil)
	}

	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		var lockUntil *time.Time
		if u.LoginAttempts+1 >= maxLoginAttempts {
			t := now.Add(lockoutDuration)
			lockUntil = &t
		}
		if ierr := s.users.IncLoginAttempts(ctx, u.ID, lockUntil); ierr != nil {
			s.log.WithError(ierr).WithField("user_id", u.ID).Warn("failed to record login attempt")
		}
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
	}

	if err := s.users.ResetLoginAttempts(ctx, u.ID); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to reset login attempts")
	}
	if err := s.users.RecordLogin(ctx, u.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record login time")
	}

	token, err := s.tokens.Issue(u, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	const op = "AuthService.GetProfile"

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, p UpdateProfileParams) (*models.User, error) {
	const op = "AuthService.UpdateProfile"

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	if p.LastName != "" {
		u.LastName = p.LastName
	}
	if p.PhoneNumber != "" {
		u.PhoneNumber = p.PhoneNumber
	}
	if p.Skills != nil {
		u.Skills = p.Skills
	}
	if p.Expertise != nil {
		u.Expertise = p.Expertise
	}
	if p.Profile != nil {
		b, err := json.Marshal(p.Profile)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid profile payload", err)
		}
		u.Profile = datatypes.JSON(b)
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return u, nil
}

func (s *authService) UploadResume(ctx context.Context, userID, contentType string, r io.Reader) (string, error) {
	const op = "AuthService.UploadResume"

	if s.store == nil {
		return "", utils.E(utils.CodeUnavailable, op, "Resume storage is not configured", nil)
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	object := fmt.Sprintf("resumes/%s/%d", userID, time.Now().UTC().UnixMilli())
	url, err := s.store.Upload(ctx, object, contentType, r)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to upload resume", err)
	}

	u.ResumeURL = url
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to save resume url", err)
	}
	return url, nil
}
