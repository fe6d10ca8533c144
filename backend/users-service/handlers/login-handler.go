package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-project/backend/users-service/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginHandler struct {
	UserService *services.UserService
}

func validateCredentials(username, password string) bool {
	if len(username) < 3 || len(username) > 20 {
		return false
	}
	if len(password) < 6 || len(password) > 64 {
		return false
	}
	return true
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if !validateCredentials(req.Username, req.Password) {
		http.Error(w, "Invalid credentials format", http.StatusBadRequest)
		return
	}

	user, token, err := h.UserService.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	response := LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
