package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/postgate/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	KeepLoggedIn bool   `json:"keep_logged_in"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserPayload carries the editable profile fields. Empty fields are left unchanged.
type UpdateUserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, r, err, "Failed to register user")
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeJSON(w, http.StatusCreated, user)
}

// Login checks credentials and returns a bearer token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Login(r.Context(), payload.Username, payload.Password, payload.KeepLoggedIn)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeError(w, r, err, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// List handles retrieving one page of users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListUsers(r.Context(), queryInt(r, "page"), queryInt(r, "per_page"))
	if err != nil {
		writeError(w, r, err, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	var payload UpdateUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, payload.Username, payload.Email)
	if err != nil {
		writeError(w, r, err, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
