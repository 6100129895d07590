package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"commenthub/internal/microservices/http-api/models"
	"commenthub/internal/microservices/http-api/repository"
	"commenthub/internal/worker"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface. Mutate loads
// the comment through the mocked "Mutate" call and then runs fn on it the way
// the real repository does.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Mutate(ctx context.Context, commentID string, fn repository.MutateFunc) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	comment := args.Get(0).(*models.Comment)
	if err := fn(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, commentID string) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, string) *models.Comment); ok {
		return fn(ctx, commentID), args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListTopLevel(ctx context.Context) ([]models.Comment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListChildren(ctx context.Context, parentID string) ([]models.Comment, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListChildrenOf(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	args := m.Called(ctx, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListDeletedByAuthor(ctx context.Context, userID string) ([]models.Comment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindForUser(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListUnreadByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) SetRead(ctx context.Context, notificationID, userID string, read bool) (*models.Notification, error) {
	args := m.Called(ctx, notificationID, userID, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, notificationID, userID string) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

// MockPublisher mocks NotificationPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockSink mocks NotificationSink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Notify(ctx context.Context, req NotifyRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockNotifier records dispatched replies
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) DispatchReply(reply *models.Comment) {
	m.Called(reply)
}

// inlineRunner runs submitted tasks on the caller's goroutine.
type inlineRunner struct{}

func (inlineRunner) TrySubmit(task worker.Task) bool {
	_ = task(context.Background())
	return true
}

// fullRunner rejects every task, like a saturated pool.
type fullRunner struct{}

func (fullRunner) TrySubmit(worker.Task) bool { return false }

// memoryCommentRepo is an in-memory CommentRepository used by the tree and
// lifecycle scenario tests. It returns rows in insertion order so ordering is
// left to the service.
type memoryCommentRepo struct {
	mu       sync.Mutex
	order    []string
	comments map[string]models.Comment
	// childQueries counts ListChildrenOf calls.
	childQueries int
}

func newMemoryCommentRepo() *memoryCommentRepo {
	return &memoryCommentRepo{comments: make(map[string]models.Comment)}
}

func (r *memoryCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ParentID != nil {
		if _, ok := r.comments[*comment.ParentID]; !ok {
			return repository.ErrParentMissing
		}
	}
	r.order = append(r.order, comment.ID)
	r.comments[comment.ID] = *comment
	return nil
}

func (r *memoryCommentRepo) Mutate(_ context.Context, commentID string, fn repository.MutateFunc) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	r.comments[commentID] = c
	return &c, nil
}

func (r *memoryCommentRepo) FindByID(_ context.Context, commentID string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memoryCommentRepo) filter(keep func(models.Comment) bool) []models.Comment {
	var out []models.Comment
	for _, id := range r.order {
		if c := r.comments[id]; keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *memoryCommentRepo) ListTopLevel(context.Context) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(c models.Comment) bool { return c.ParentID == nil && !c.IsDeleted }), nil
}

func (r *memoryCommentRepo) ListChildren(ctx context.Context, parentID string) ([]models.Comment, error) {
	return r.ListChildrenOf(ctx, []string{parentID})
}

func (r *memoryCommentRepo) ListChildrenOf(_ context.Context, parentIDs []string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.childQueries++
	return r.filter(func(c models.Comment) bool {
		return c.ParentID != nil && !c.IsDeleted && slices.Contains(parentIDs, *c.ParentID)
	}), nil
}

func (r *memoryCommentRepo) ListDeletedByAuthor(_ context.Context, userID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(c models.Comment) bool { return c.AuthorID == userID && c.IsDeleted }), nil
}

// recordingSink is a NotificationSink that keeps every request.
type recordingSink struct {
	mu       sync.Mutex
	requests []NotifyRequest
}

func (s *recordingSink) Notify(_ context.Context, req NotifyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return nil
}

func (s *recordingSink) For(recipientID string) []NotifyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []NotifyRequest
	for _, r := range s.requests {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	return out
}

// staticUsers resolves usernames from a map.
type staticUsers map[string]string

func (u staticUsers) Create(context.Context, *models.User) error { return nil }

func (u staticUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for id, name := range u {
		if strings.EqualFold(name, username) {
			return &models.User{ID: id, Username: name}, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u staticUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	name, ok := u[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id, Username: name}, nil
}

func (u staticUsers) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
