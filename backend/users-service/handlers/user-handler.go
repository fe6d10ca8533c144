package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-project/backend/users-service/models"
	"taskboard-project/backend/users-service/services"
)

type UserHandler struct {
	UserService *services.UserService
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if user.Username == "" || user.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if err := h.UserService.RegisterUser(r.Context(), user); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
}

// GetProfile returns the profile of the authenticated user, identified by
// the X-User-Id header the JWT middleware sets.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get("X-User-Id")
	if username == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUserByUsername(r.Context(), username)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
