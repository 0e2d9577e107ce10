// Package service holds the application use cases. Services validate input
// and return only *models.AppError values.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/notifications"
	"github.com/AlbertoOrlando/travel-journal-app/internal/observability"
	"github.com/AlbertoOrlando/travel-journal-app/internal/repository"
	"github.com/AlbertoOrlando/travel-journal-app/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer issues and verifies access tokens.
type TokenIssuer interface {
	Issue(userID uint, ttl time.Duration) (string, error)
	Verify(token string) (uint, error)
}

// Notifier queues an email without waiting for delivery.
type Notifier interface {
	SendAsync(ctx context.Context, msg notifications.Message)
}

type AuthService struct {
	users       repository.UserRepository
	tokens      TokenIssuer
	notifier    Notifier
	registerTTL time.Duration
	loginTTL    time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput accepts the login id under any of three names; the first
// non-blank of Identifier, Email, Username wins.
type LoginInput struct {
	Identifier string
	Email      string
	Username   string
	Password   string
}

func (in LoginInput) loginID() string {
	for _, v := range []string{in.Identifier, in.Email, in.Username} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

type AuthResult struct {
	User  *models.User
	Token string
}

// NewAuthService wires the credential store. notifier may be nil.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, notifier Notifier, registerTTL, loginTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		notifier:    notifier,
		registerTTL: registerTTL,
		loginTTL:    loginTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	reg := validation.Registration{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
	if err := validation.ValidateRegistration(reg); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: reg.Username, Email: reg.Email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		observability.AuthEvents.WithLabelValues("register_rejected").Inc()
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, s.registerTTL)
	if err != nil {
		return nil, models.AsAppError(err)
	}
	observability.AuthEvents.WithLabelValues("register").Inc()

	if s.notifier != nil {
		s.notifier.SendAsync(ctx, notifications.RegistrationConfirmation(user.Username, user.Email))
	}
	return &AuthResult{User: user, Token: token}, nil
}

// dummyHash keeps unknown-user logins as slow as wrong-password logins.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("travelog-timing-equalizer"), bcrypt.DefaultCost)
	return h
})

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	id := in.loginID()
	if id == "" || in.Password == "" {
		return nil, models.NewValidationError("Identifier and password are required")
	}

	user, err := s.users.FindByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(in.Password))
		observability.AuthEvents.WithLabelValues("login_failed").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		observability.AuthEvents.WithLabelValues("login_failed").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, s.loginTTL)
	if err != nil {
		return nil, models.AsAppError(err)
	}
	observability.AuthEvents.WithLabelValues("login").Inc()
	return &AuthResult{User: user, Token: token}, nil
}

// Verify resolves a bearer token to its user id.
func (s *AuthService) Verify(token string) (uint, error) {
	return s.tokens.Verify(token)
}
