package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/notifications"
	"github.com/AlbertoOrlando/travel-journal-app/internal/repository"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"
	"github.com/AlbertoOrlando/travel-journal-app/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	findByIdentifierFn func(context.Context, string) (*models.User, error)
	getByIDFn          func(context.Context, uint) (*models.User, error)
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) FindByIdentifier(ctx context.Context, id string) (*models.User, error) {
	return s.findByIdentifierFn(ctx, id)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post, []string) error
	listByUserFn func(context.Context, uint) ([]models.Post, error)
	getByIDFn    func(context.Context, uint, uint) (*models.Post, error)
	updateFn     func(context.Context, *models.Post, tags.Input) error
	deleteFn     func(context.Context, uint, uint) error
}

var _ repository.PostRepository = (*postRepoStub)(nil)

func (s *postRepoStub) Create(ctx context.Context, p *models.Post, names []string) error {
	return s.createFn(ctx, p, names)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, userID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, userID)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post, in tags.Input) error {
	return s.updateFn(ctx, p, in)
}
func (s *postRepoStub) Delete(ctx context.Context, id, userID uint) error {
	return s.deleteFn(ctx, id, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post, names []string) error {
			p.ID = 1
			p.Tags = tags.Normalize(names)
			return nil
		},
		listByUserFn: func(_ context.Context, _ uint) ([]models.Post, error) { return []models.Post{}, nil },
		getByIDFn:    func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:     func(_ context.Context, _ *models.Post, _ tags.Input) error { return nil },
		deleteFn:     func(_ context.Context, _, _ uint) error { return nil },
	}
}

// mediaStub is a stub for MediaStore.
type mediaStub struct {
	saveFn  func(context.Context, upload.File) (string, error)
	removed []string
}

func (m *mediaStub) Save(ctx context.Context, f upload.File) (string, error) { return m.saveFn(ctx, f) }
func (m *mediaStub) Remove(url string) error {
	m.removed = append(m.removed, url)
	return nil
}

type tokenStub struct {
	issuedFor uint
	issuedTTL time.Duration
	err       error
}

func (s *tokenStub) Issue(userID uint, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issuedFor, s.issuedTTL = userID, ttl
	return "signed-token", nil
}

func (s *tokenStub) Verify(token string) (uint, error) {
	if token == "signed-token" {
		return 42, nil
	}
	return 0, models.NewUnauthorizedError("Invalid token")
}

type notifierStub struct {
	mu   sync.Mutex
	sent []notifications.Message
}

func (n *notifierStub) SendAsync(_ context.Context, msg notifications.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
