package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"taskboard-project/backend/tasks-service/logging"
	"taskboard-project/backend/tasks-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	repo                 TaskRepository
	httpClient           *http.Client
	notificationsBreaker *gobreaker.CircuitBreaker
	notificationsURL     string
}

func NewTaskService(repo TaskRepository, httpClient *http.Client, notificationsBreaker *gobreaker.CircuitBreaker, notificationsURL string) *TaskService {
	return &TaskService{
		repo:                 repo,
		httpClient:           httpClient,
		notificationsBreaker: notificationsBreaker,
		notificationsURL:     notificationsURL,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, input models.CreateTaskInput, actingUserID string) (*models.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.AssigneeID == "" {
		return nil, fmt.Errorf("assigneeId is required")
	}
	if input.TeamID == "" {
		return nil, fmt.Errorf("teamId is required")
	}
	if input.Status == "" {
		input.Status = models.StatusTodo
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", input.Status)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", input.Priority)
	}

	now := time.Now().UTC()
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		TeamID:      input.TeamID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedBy:   actingUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.notifyAssignment(created.AssigneeID, fmt.Sprintf("You have been assigned the task: %s", created.Title))

	return created, nil
}

// UpdateTask applies input on top of the stored task. The caller must supply
// the version it last observed; when two updates race with the same observed
// version at most one wins, the other gets a ConflictError and has to
// re-fetch and retry. There is no retry here.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, input models.UpdateTaskInput, actingUserID string) (*models.Task, error) {
	current, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if current.CreatedBy != actingUserID {
		return nil, models.ErrForbidden
	}

	if input.Version != current.Version {
		return nil, &models.ConflictError{Conflict: models.TaskConflict{
			TaskID:        taskID.Hex(),
			ServerVersion: current.Version,
			ClientVersion: input.Version,
			ServerData:    current,
		}}
	}

	previousAssignee := current.AssigneeID

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		current.Title = *input.Title
	}
	if input.Description != nil {
		current.Description = *input.Description
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			return nil, fmt.Errorf("assigneeId cannot be empty")
		}
		current.AssigneeID = *input.AssigneeID
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("invalid status: %s", *input.Status)
		}
		current.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority: %s", *input.Priority)
		}
		current.Priority = *input.Priority
	}
	if input.DueDate != nil {
		current.DueDate = input.DueDate
	}
	current.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.UpdateWithVersion(ctx, taskID, input.Version, current)
	if err != nil {
		return nil, err
	}

	if updated.AssigneeID != previousAssignee {
		s.notifyAssignment(updated.AssigneeID, fmt.Sprintf("You have been assigned the task: %s", updated.Title))
	}

	return updated, nil
}

func (s *TaskService) RemoveTask(ctx context.Context, taskID primitive.ObjectID, actingUserID string) (bool, error) {
	current, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return false, err
	}

	if current.CreatedBy != actingUserID {
		return false, models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return false, err
	}
	return true, nil
}

// CheckConflict is a read-only diagnostic: it reports whether clientVersion
// is stale without changing anything. ClientData stays nil for the caller.
func (s *TaskService) CheckConflict(ctx context.Context, taskID primitive.ObjectID, clientVersion int) (*models.TaskConflict, error) {
	current, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if current.Version == clientVersion {
		return nil, nil
	}

	return &models.TaskConflict{
		TaskID:        taskID.Hex(),
		ServerVersion: current.Version,
		ClientVersion: clientVersion,
		ServerData:    current,
	}, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	return s.repo.FindByID(ctx, taskID)
}

func (s *TaskService) GetAllTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

// notifyAssignment posts an in-app notification through the circuit breaker.
// Notification failures never fail the task mutation.
func (s *TaskService) notifyAssignment(userID, message string) {
	if s.notificationsBreaker == nil || s.notificationsURL == "" {
		return
	}

	_, err := s.notificationsBreaker.Execute(func() (interface{}, error) {
		payload, err := json.Marshal(map[string]string{
			"userId":   userID,
			"username": userID,
			"message":  message,
		})
		if err != nil {
			return nil, err
		}

		resp, err := s.httpClient.Post(s.notificationsURL+"/api/notifications", "application/json", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("notifications service returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_FAILED, Description: Failed to send assignment notification for user %s: %v", userID, err)
	}
}
