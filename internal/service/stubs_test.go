package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chattym/internal/database"
	"chattym/internal/models"
	"chattym/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getActiveByIDFn func(context.Context, uint) (*models.Post, error)
	updateFieldsFn  func(context.Context, uint, map[string]interface{}) error
	deactivateFn    func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getActiveByIDFn(ctx, id)
}
func (s *postRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *postRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *postRepoStub) Feed(context.Context, uint, repository.Page) ([]models.Post, int64, error) {
	return nil, 0, nil
}
func (s *postRepoStub) ListByUser(context.Context, uint, uint, bool, repository.Page) ([]models.Post, int64, error) {
	return nil, 0, nil
}
func (s *postRepoStub) Query(context.Context, repository.PostQuery) ([]models.Post, int64, error) {
	return nil, 0, nil
}
func (s *postRepoStub) CountActiveByUser(context.Context, uint) (int64, error) { return 0, nil }
func (s *postRepoStub) SumLikesByUser(context.Context, uint) (int64, error)    { return 0, nil }

func noopPostRepo() *postRepoStub {
	active := func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 100, IsActive: true}, nil
	}
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       active,
		getActiveByIDFn: active,
		updateFieldsFn:  func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		deactivateFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	updateContentFn func(context.Context, uint, string, uint, time.Time) error
	deactivateFn    func(context.Context, uint) error
	listForPostFn   func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string, editorID uint, at time.Time) error {
	return s.updateContentFn(ctx, id, content, editorID, at)
}
func (s *commentRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *commentRepoStub) ListForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listForPostFn(ctx, postID)
}
func (s *commentRepoStub) CountActiveByPost(context.Context, uint) (int64, error) { return 0, nil }

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 42
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, PostID: 1, IsActive: true}, nil
		},
		updateContentFn: func(_ context.Context, _ uint, _ string, _ uint, _ time.Time) error { return nil },
		deactivateFn:    func(_ context.Context, _ uint) error { return nil },
		listForPostFn:   func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
	}
}

// notifierSpy records Notify calls.
type notifierSpy struct {
	mu    sync.Mutex
	calls []NotifyInput
}

func (n *notifierSpy) Notify(_ context.Context, in NotifyInput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, in)
}

func (n *notifierSpy) verbs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.Verb)
	}
	return out
}

func staffIs(staff bool) StaffChecker {
	return func(context.Context, uint) (bool, error) { return staff, nil }
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash", IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}
