package repositories

import (
	"fmt"
	"os"
	"time"

	"taskboard-project/backend/notifications-service/logging"
	"taskboard-project/backend/notifications-service/models"

	"github.com/gocql/gocql"
)

type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo connects to Cassandra, creating the notifications
// keyspace and table when they are missing.
func NewNotificationRepo() (*NotificationRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %v", err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create keyspace: %v", err)
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to notifications keyspace: %v", err)
	}

	repo := &NotificationRepo{session: session}
	if err := repo.createTable(); err != nil {
		session.Close()
		return nil, err
	}

	logging.Logger.Info("Event ID: DB_CONNECTED, Description: Connected to Cassandra notifications keyspace.")
	return repo, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: DB_SESSION_CLOSED, Description: Cassandra session closed.")
}

func (nr *NotificationRepo) createTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			username TEXT,
			user_id TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((username), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %v", err)
	}
	return nil
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, username, user_id, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.Username, notification.UserID, notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_CREATE_FAILED, Description: Failed to create notification: %v", err)
		return err
	}

	return nil
}

func (nr *NotificationRepo) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	query := `SELECT id, user_id, username, message, created_at, is_read
			  FROM notifications WHERE username = ?`

	iter := nr.session.Query(query, username).Iter()
	var notifications []models.Notification
	var notification models.Notification

	for iter.Scan(&notification.ID, &notification.UserID, &notification.Username,
		&notification.Message, &notification.CreatedAt, &notification.IsRead) {
		notifications = append(notifications, notification)
	}

	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: Failed to fetch notifications for %s: %v", username, err)
		return nil, err
	}

	return notifications, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("invalid UUID format: %v", err)
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("invalid created_at format: %v", err)
	}

	query := `UPDATE notifications SET is_read = true WHERE username = ? AND id = ? AND created_at = ?`
	if err := nr.session.Query(query, username, uuid, parsedCreatedAt).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_UPDATE_FAILED, Description: Failed to mark notification as read: %v", err)
		return err
	}

	return nil
}
