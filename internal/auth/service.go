package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"planner/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

// ResetSender delivers password reset tokens to the user.
type ResetSender interface {
	SendReset(ctx context.Context, email, token string) error
}

// LogResetSender writes reset tokens to the log. Used when no mailer is set up.
type LogResetSender struct {
	Logger *slog.Logger
}

func (s LogResetSender) SendReset(ctx context.Context, email, token string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset requested", slog.String("email", email), slog.String("token", token))
	return nil
}

// Session is the identity established by sign-in.
type Session struct {
	User  *model.User
	Token string
}

type Service struct {
	users  UserStore
	tokens *Tokens
	resets ResetSender
}

func NewService(users UserStore, tokens *Tokens, resets ResetSender) *Service {
	if resets == nil {
		resets = LogResetSender{}
	}
	return &Service{users: users, tokens: tokens, resets: resets}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// RequestPasswordReset sends a reset token when the email is known. Unknown
// emails succeed silently so the endpoint does not reveal registrations.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil
	}
	token, err := s.tokens.generateResetToken(user.ID.String(), resetTokenTTL)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	return s.resets.SendReset(ctx, user.Email, token)
}

// ResetPassword sets a new password for the user named by a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	raw, err := s.tokens.parseResetToken(token)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidClaims
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// CurrentUser resolves a session token to its user id.
func (s *Service) CurrentUser(token string) (uuid.UUID, error) {
	raw, err := s.tokens.ParseToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}

func (s *Service) issue(user *model.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
