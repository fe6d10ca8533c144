package services

import (
	"fmt"
	"time"

	"taskboard-project/backend/notifications-service/models"
)

// NotificationStore is the storage contract the service runs against.
type NotificationStore interface {
	CreateNotification(notification *models.Notification) error
	GetNotificationsByUsername(username string) ([]models.Notification, error)
	MarkNotificationAsRead(username, notificationID, createdAt string) error
}

type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

func (ns *NotificationService) CreateNotification(userID, username, message string) error {
	if userID == "" || username == "" || message == "" {
		return fmt.Errorf("userID, username, and message are required")
	}
	notification := models.Notification{
		UserID:    userID,
		Username:  username,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		IsRead:    false,
	}
	return ns.repo.CreateNotification(&notification)
}

func (ns *NotificationService) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	return ns.repo.GetNotificationsByUsername(username)
}

func (ns *NotificationService) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("username, notificationID, and createdAt are required")
	}
	return ns.repo.MarkNotificationAsRead(username, notificationID, createdAt)
}
