package services

import (
	"testing"

	"taskboard-project/backend/notifications-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotificationStore struct {
	byUsername map[string][]models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{byUsername: make(map[string][]models.Notification)}
}

func (s *memNotificationStore) CreateNotification(notification *models.Notification) error {
	s.byUsername[notification.Username] = append(s.byUsername[notification.Username], *notification)
	return nil
}

func (s *memNotificationStore) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	return s.byUsername[username], nil
}

func (s *memNotificationStore) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	list := s.byUsername[username]
	for i := range list {
		if list[i].ID == notificationID {
			list[i].IsRead = true
		}
	}
	s.byUsername[username] = list
	return nil
}

func TestCreateNotification(t *testing.T) {
	store := newMemNotificationStore()
	svc := NewNotificationService(store)

	err := svc.CreateNotification("u2", "u2", "You have been assigned the task: Write spec")
	require.NoError(t, err)

	notifications, err := svc.GetNotificationsByUsername("u2")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "You have been assigned the task: Write spec", notifications[0].Message)
	assert.False(t, notifications[0].IsRead)
	assert.False(t, notifications[0].CreatedAt.IsZero())
}

func TestCreateNotification_RequiredFields(t *testing.T) {
	svc := NewNotificationService(newMemNotificationStore())

	assert.Error(t, svc.CreateNotification("", "u2", "msg"))
	assert.Error(t, svc.CreateNotification("u2", "", "msg"))
	assert.Error(t, svc.CreateNotification("u2", "u2", ""))
}

func TestGetNotificationsByUsername_RequiresUsername(t *testing.T) {
	svc := NewNotificationService(newMemNotificationStore())

	_, err := svc.GetNotificationsByUsername("")
	assert.Error(t, err)
}

func TestMarkNotificationAsRead_RequiredFields(t *testing.T) {
	svc := NewNotificationService(newMemNotificationStore())

	assert.Error(t, svc.MarkNotificationAsRead("", "id", "2026-01-01T00:00:00Z"))
	assert.Error(t, svc.MarkNotificationAsRead("u2", "", "2026-01-01T00:00:00Z"))
	assert.Error(t, svc.MarkNotificationAsRead("u2", "id", ""))
}
