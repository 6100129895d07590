package service

import (
	"context"
	"errors"
	"testing"

	"commenthub/internal/clock"
	"commenthub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNotify_StoresThenPublishes(t *testing.T) {
	repo := new(MockNotificationRepository)
	pub := new(MockPublisher)
	svc := NewNotificationService(repo, pub, clock.NewManual(t0), nil)

	related := "r1"
	var stored *models.Notification
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.Notification) }).
		Return(nil)
	pub.On("PublishNotification", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(nil)

	err := svc.Notify(context.Background(), NotifyRequest{
		RecipientID:      "u1",
		Type:             models.NotificationReply,
		Message:          "bob replied to your comment",
		RelatedCommentID: &related,
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "u1", stored.UserID)
	assert.False(t, stored.IsRead)
	assert.True(t, stored.CreatedAt.Equal(t0))
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestNotify_PublishFailureIsNotAnError(t *testing.T) {
	repo := new(MockNotificationRepository)
	pub := new(MockPublisher)
	svc := NewNotificationService(repo, pub, clock.NewManual(t0), nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishNotification", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	assert.NoError(t, svc.Notify(context.Background(), NotifyRequest{RecipientID: "u1", Type: models.NotificationReply}))
}

func TestNotify_StoreFailureSkipsPublish(t *testing.T) {
	repo := new(MockNotificationRepository)
	pub := new(MockPublisher)
	svc := NewNotificationService(repo, pub, clock.NewManual(t0), nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	assert.Error(t, svc.Notify(context.Background(), NotifyRequest{RecipientID: "u1"}))
	pub.AssertNotCalled(t, "PublishNotification", mock.Anything, mock.Anything)
}

func TestNotify_Validation(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil, clock.NewManual(t0), nil)

	assert.Error(t, svc.Notify(context.Background(), NotifyRequest{}))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationSystem
	})).Return(nil).Once()
	require.NoError(t, svc.Notify(context.Background(), NotifyRequest{RecipientID: "u1", Type: "bogus"}))
	repo.AssertExpectations(t)
}

func TestMarkAsRead(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil, clock.NewManual(t0), nil)

	repo.On("SetRead", mock.Anything, "n1", "u1", true).Return(&models.Notification{ID: "n1", UserID: "u1", IsRead: true}, nil)
	repo.On("SetRead", mock.Anything, "n1", "u2", true).Return(nil, gorm.ErrRecordNotFound)
	repo.On("SetRead", mock.Anything, "n1", "u1", false).Return(&models.Notification{ID: "n1", UserID: "u1"}, nil)

	n, err := svc.MarkAsRead(context.Background(), "u1", "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, err = svc.MarkAsRead(context.Background(), "u2", "n1")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = svc.MarkAsUnread(context.Background(), "u1", "n1")
	require.NoError(t, err)
	assert.False(t, n.IsRead)
}

func TestDeleteNotification(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil, clock.NewManual(t0), nil)

	repo.On("Delete", mock.Anything, "n1", "u1").Return(nil)
	repo.On("Delete", mock.Anything, "n1", "u2").Return(gorm.ErrRecordNotFound)

	assert.NoError(t, svc.Delete(context.Background(), "u1", "n1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "u2", "n1"), ErrNotificationNotFound)
}

func TestListingPassThrough(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil, clock.NewManual(t0), nil)

	all := []models.Notification{{ID: "n2"}, {ID: "n1", IsRead: true}}
	repo.On("ListByUser", mock.Anything, "u1").Return(all, nil)
	repo.On("ListUnreadByUser", mock.Anything, "u1").Return(all[:1], nil)
	repo.On("CountUnread", mock.Anything, "u1").Return(int64(1), nil)
	repo.On("MarkAllAsRead", mock.Anything, "u1").Return(nil)

	got, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	unread, err := svc.ListUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, svc.MarkAllAsRead(context.Background(), "u1"))
	repo.AssertExpectations(t)
}
