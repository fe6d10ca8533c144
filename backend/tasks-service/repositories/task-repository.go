package repositories

import (
	"context"
	"errors"

	"taskboard-project/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TaskRepo struct {
	tasksCollection *mongo.Collection
}

func NewTaskRepo(tasksCollection *mongo.Collection) *TaskRepo {
	return &TaskRepo{tasksCollection: tasksCollection}
}

func (r *TaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.Version = 1

	result, err := r.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, &models.StorageError{Op: "create task", Err: err}
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	return task, nil
}

func (r *TaskRepo) FindByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find task", Err: err}
	}
	return &task, nil
}

func (r *TaskRepo) FindAll(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	cursor, err := r.tasksCollection.Find(ctx, buildFilter(filter))
	if err != nil {
		return nil, &models.StorageError{Op: "list tasks", Err: err}
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, &models.StorageError{Op: "decode task", Err: err}
		}
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, &models.StorageError{Op: "list tasks", Err: err}
	}

	return tasks, nil
}

// UpdateWithVersion persists the mutable fields of task in a single
// conditional write keyed on (id, expectedVersion). The version check and the
// increment happen in one UpdateOne, so of two racing writers with the same
// observed version exactly one matches; the other gets a ConflictError
// carrying the current server state.
func (r *TaskRepo) UpdateWithVersion(ctx context.Context, taskID primitive.ObjectID, expectedVersion int, task *models.Task) (*models.Task, error) {
	filter := bson.M{"_id": taskID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"title":       task.Title,
			"description": task.Description,
			"assigneeId":  task.AssigneeID,
			"status":      task.Status,
			"priority":    task.Priority,
			"dueDate":     task.DueDate,
			"updatedAt":   task.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.tasksCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, &models.StorageError{Op: "update task", Err: err}
	}

	if result.MatchedCount == 0 {
		// Either the task is gone or someone else won the race. Re-fetch to
		// tell the two apart and to report the current server state.
		current, ferr := r.FindByID(ctx, taskID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, &models.ConflictError{Conflict: models.TaskConflict{
			TaskID:        taskID.Hex(),
			ServerVersion: current.Version,
			ClientVersion: expectedVersion,
			ServerData:    current,
		}}
	}

	var updated models.Task
	if err := r.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&updated); err != nil {
		return nil, &models.StorageError{Op: "fetch updated task", Err: err}
	}
	return &updated, nil
}

func (r *TaskRepo) Delete(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := r.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return &models.StorageError{Op: "delete task", Err: err}
	}
	if result.DeletedCount == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func buildFilter(filter models.TaskFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Priority != nil {
		query["priority"] = *filter.Priority
	}
	if filter.AssigneeID != nil {
		query["assigneeId"] = *filter.AssigneeID
	}
	if filter.CreatedBy != nil {
		query["createdBy"] = *filter.CreatedBy
	}
	if filter.DueFrom != nil || filter.DueTo != nil {
		due := bson.M{}
		if filter.DueFrom != nil {
			due["$gte"] = *filter.DueFrom
		}
		if filter.DueTo != nil {
			due["$lte"] = *filter.DueTo
		}
		query["dueDate"] = due
	}
	return query
}
