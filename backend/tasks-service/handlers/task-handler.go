package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskboard-project/backend/tasks-service/logging"
	"taskboard-project/backend/tasks-service/models"
	"taskboard-project/backend/tasks-service/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// actingUserID reads the identity the gateway injected after validating the
// JWT. The service trusts it as-is.
func actingUserID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

type errorResponse struct {
	Message  string               `json:"message"`
	Conflict *models.TaskConflict `json:"conflict,omitempty"`
}

// writeDomainError maps domain failures onto transport status codes:
// NotFound 404, Forbidden 403, Conflict 409 (with the server state in the
// body), storage failures 500. Anything else is treated as a bad request.
func writeDomainError(w http.ResponseWriter, err error) {
	var conflictErr *models.ConflictError
	var storageErr *models.StorageError

	switch {
	case errors.Is(err, models.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "task not found"})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "access forbidden: only the task creator may modify the task"})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error(), Conflict: &conflictErr.Conflict})
	case errors.As(err, &storageErr):
		logging.Logger.Errorf("Event ID: STORAGE_ERROR, Description: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "storage error"})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(r)
	if userID == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}

	var input models.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	createdTask, err := h.service.CreateTask(r.Context(), input, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by user %s", createdTask.ID.Hex(), userID)
	writeJSON(w, http.StatusCreated, createdTask)
}

func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tasks, err := h.service.GetAllTasks(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	task, err := h.service.GetTaskByID(r.Context(), taskID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(r)
	if userID == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}

	taskID, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	var input models.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updatedTask, err := h.service.UpdateTask(r.Context(), taskID, input, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated to version %d by user %s", updatedTask.ID.Hex(), updatedTask.Version, userID)
	writeJSON(w, http.StatusOK, updatedTask)
}

func (h *TaskHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(r)
	if userID == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}

	taskID, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	removed, err := h.service.RemoveTask(r.Context(), taskID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by user %s", taskID.Hex(), userID)
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// CheckConflict reports whether the version in the query is stale. The body
// is the conflict descriptor, or JSON null when the version is current.
func (h *TaskHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	clientVersion, err := strconv.Atoi(r.URL.Query().Get("version"))
	if err != nil {
		http.Error(w, "version query parameter is required and must be an integer", http.StatusBadRequest)
		return
	}

	conflict, err := h.service.CheckConflict(r.Context(), taskID, clientVersion)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conflict)
}

func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func taskIDFromRequest(r *http.Request) (primitive.ObjectID, error) {
	vars := mux.Vars(r)
	return primitive.ObjectIDFromHex(vars["taskID"])
}

func filterFromQuery(r *http.Request) (models.TaskFilter, error) {
	var filter models.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !priority.Valid() {
			return filter, errors.New("invalid priority filter")
		}
		filter.Priority = &priority
	}
	if v := q.Get("assigneeId"); v != "" {
		filter.AssigneeID = &v
	}
	if v := q.Get("createdBy"); v != "" {
		filter.CreatedBy = &v
	}
	if v := q.Get("dueFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("dueFrom must be an RFC3339 timestamp")
		}
		filter.DueFrom = &t
	}
	if v := q.Get("dueTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("dueTo must be an RFC3339 timestamp")
		}
		filter.DueTo = &t
	}

	return filter, nil
}
