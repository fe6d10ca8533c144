package services

import (
	"context"

	"taskboard-project/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskRepository is the storage contract the service runs against. Any store
// works as long as UpdateWithVersion performs the version check and the
// increment as one atomic operation per task id.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	UpdateWithVersion(ctx context.Context, taskID primitive.ObjectID, expectedVersion int, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, taskID primitive.ObjectID) error
}
