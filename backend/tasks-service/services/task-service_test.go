package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskboard-project/backend/tasks-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memTaskRepo is an in-memory TaskRepository. UpdateWithVersion holds the
// lock across the version check and the increment, matching the atomicity
// the Mongo conditional update provides.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]models.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[primitive.ObjectID]models.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = primitive.NewObjectID()
	task.Version = 1
	r.tasks[task.ID] = *task

	stored := r.tasks[task.ID]
	return &stored, nil
}

func (r *memTaskRepo) FindByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	return &task, nil
}

func (r *memTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []*models.Task
	for _, task := range r.tasks {
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && task.AssigneeID != *filter.AssigneeID {
			continue
		}
		if filter.CreatedBy != nil && task.CreatedBy != *filter.CreatedBy {
			continue
		}
		task := task
		tasks = append(tasks, &task)
	}
	return tasks, nil
}

func (r *memTaskRepo) UpdateWithVersion(ctx context.Context, taskID primitive.ObjectID, expectedVersion int, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[taskID]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	if current.Version != expectedVersion {
		serverData := current
		return nil, &models.ConflictError{Conflict: models.TaskConflict{
			TaskID:        taskID.Hex(),
			ServerVersion: current.Version,
			ClientVersion: expectedVersion,
			ServerData:    &serverData,
		}}
	}

	updated := *task
	updated.ID = taskID
	updated.Version = current.Version + 1
	updated.CreatedBy = current.CreatedBy
	updated.TeamID = current.TeamID
	updated.CreatedAt = current.CreatedAt
	r.tasks[taskID] = updated

	stored := r.tasks[taskID]
	return &stored, nil
}

func (r *memTaskRepo) Delete(ctx context.Context, taskID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[taskID]; !ok {
		return models.ErrTaskNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

func newTestService() (*TaskService, *memTaskRepo) {
	repo := newMemTaskRepo()
	return NewTaskService(repo, nil, nil, ""), repo
}

func createTestTask(t *testing.T, svc *TaskService) *models.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), models.CreateTaskInput{
		Title:      "Write spec",
		AssigneeID: "u2",
		TeamID:     "t1",
		Status:     models.StatusTodo,
		Priority:   models.PriorityMedium,
	}, "u1")
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func TestCreateTask_SetsInitialVersionAndCreator(t *testing.T) {
	svc, _ := newTestService()

	task := createTestTask(t, svc)

	assert.Equal(t, 1, task.Version)
	assert.Equal(t, "u1", task.CreatedBy)
	assert.Equal(t, "t1", task.TeamID)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreateTask_DefaultsStatusAndPriority(t *testing.T) {
	svc, _ := newTestService()

	task, err := svc.CreateTask(context.Background(), models.CreateTaskInput{
		Title:      "Untriaged",
		AssigneeID: "u2",
		TeamID:     "t1",
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
}

func TestCreateTask_RequiredFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTask(context.Background(), models.CreateTaskInput{AssigneeID: "u2", TeamID: "t1"}, "u1")
	assert.Error(t, err)

	_, err = svc.CreateTask(context.Background(), models.CreateTaskInput{Title: "x", TeamID: "t1"}, "u1")
	assert.Error(t, err)

	_, err = svc.CreateTask(context.Background(), models.CreateTaskInput{Title: "x", AssigneeID: "u2"}, "u1")
	assert.Error(t, err)
}

func TestUpdateTask_IncrementsVersionByOne(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	// A chain of successful updates must move the version 1 -> 2 -> 3 -> 4
	// without skips.
	for i, want := range []int{2, 3, 4} {
		updated, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
			Status:  statusPtr(models.StatusInProgress),
			Version: want - 1,
		}, "u1")
		require.NoError(t, err, "update %d", i)
		assert.Equal(t, want, updated.Version)
	}
}

func TestUpdateTask_StaleVersionReturnsConflict(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	updated, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Status:  statusPtr(models.StatusInProgress),
		Version: 1,
	}, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)

	_, err = svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Status:  statusPtr(models.StatusDone),
		Version: 1,
	}, "u1")

	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, 2, conflictErr.Conflict.ServerVersion)
	assert.Equal(t, 1, conflictErr.Conflict.ClientVersion)
	require.NotNil(t, conflictErr.Conflict.ServerData)
	assert.Equal(t, models.StatusInProgress, conflictErr.Conflict.ServerData.Status)
	assert.Nil(t, conflictErr.Conflict.ClientData)
}

func TestUpdateTask_ConcurrentSameVersionHasOneWinner(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
				Title:   strPtr("racer"),
				Version: 1,
			}, "u1")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		var conflictErr *models.ConflictError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &conflictErr):
			conflicts++
			assert.Equal(t, 2, conflictErr.Conflict.ServerVersion)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	current, err := svc.GetTaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
}

func TestUpdateTask_NonCreatorForbiddenRegardlessOfVersion(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	// Correct version, wrong user.
	_, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Title:   strPtr("x"),
		Version: 1,
	}, "u2")
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Stale version, wrong user: still forbidden, not conflict.
	_, err = svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Title:   strPtr("x"),
		Version: 99,
	}, "u2")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdateTask_NotFoundTakesPrecedence(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateTask(context.Background(), primitive.NewObjectID(), models.UpdateTaskInput{
		Title:   strPtr("x"),
		Version: 1,
	}, "u1")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestUpdateTask_PreservesImmutableFields(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	updated, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		AssigneeID: strPtr("u3"),
		Version:    1,
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", updated.CreatedBy)
	assert.Equal(t, "t1", updated.TeamID)
	assert.Equal(t, "u3", updated.AssigneeID)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
}

func TestUpdateTask_AllowsAnyStatusTransition(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	updated, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Status:  statusPtr(models.StatusDone),
		Version: 1,
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	// DONE back to TODO is allowed; transitions are unconstrained.
	updated, err = svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Status:  statusPtr(models.StatusTodo),
		Version: 2,
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, updated.Status)
}

func TestRemoveTask(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	_, err := svc.RemoveTask(context.Background(), task.ID, "u2")
	assert.ErrorIs(t, err, models.ErrForbidden)

	removed, err := svc.RemoveTask(context.Background(), task.ID, "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.GetTaskByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	_, err = svc.RemoveTask(context.Background(), task.ID, "u1")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestCheckConflict(t *testing.T) {
	svc, _ := newTestService()
	task := createTestTask(t, svc)

	conflict, err := svc.CheckConflict(context.Background(), task.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, conflict)

	updated, err := svc.UpdateTask(context.Background(), task.ID, models.UpdateTaskInput{
		Status:  statusPtr(models.StatusInProgress),
		Version: 1,
	}, "u1")
	require.NoError(t, err)

	conflict, err = svc.CheckConflict(context.Background(), task.ID, updated.Version)
	require.NoError(t, err)
	assert.Nil(t, conflict)

	conflict, err = svc.CheckConflict(context.Background(), task.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, task.ID.Hex(), conflict.TaskID)
	assert.Equal(t, 2, conflict.ServerVersion)
	assert.Equal(t, 1, conflict.ClientVersion)
	require.NotNil(t, conflict.ServerData)
	assert.Equal(t, models.StatusInProgress, conflict.ServerData.Status)
	assert.Nil(t, conflict.ClientData)

	_, err = svc.CheckConflict(context.Background(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestGetAllTasks_Filter(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTask(context.Background(), models.CreateTaskInput{
		Title: "a", AssigneeID: "u2", TeamID: "t1", Status: models.StatusTodo, Priority: models.PriorityHigh,
	}, "u1")
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), models.CreateTaskInput{
		Title: "b", AssigneeID: "u3", TeamID: "t1", Status: models.StatusDone, Priority: models.PriorityLow,
	}, "u1")
	require.NoError(t, err)

	all, err := svc.GetAllTasks(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done := models.StatusDone
	filtered, err := svc.GetAllTasks(context.Background(), models.TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Title)

	assignee := "u2"
	filtered, err = svc.GetAllTasks(context.Background(), models.TaskFilter{AssigneeID: &assignee})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].Title)
}
