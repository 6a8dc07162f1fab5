package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/postgate/internal/auth"
	"github.com/isdelr/postgate/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// Owner resolves the owner of the post named by the {id} URL parameter.
func (h *PostHandler) Owner(r *http.Request) auth.OwnerFunc {
	return func(ctx context.Context) (*int64, error) {
		id, ok := idParam(r)
		if !ok {
			return nil, services.ErrNotFound
		}
		return h.service.PostOwner(ctx, id)
	}
}

// List handles retrieving one page of published posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPublished(r.Context(), queryInt(r, "page"), queryInt(r, "posts_per_page"))
	if err != nil {
		writeError(w, r, err, "Failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles retrieving a post by its ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetBySlug handles retrieving a post by its slug.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, "Failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create stores a post owned by the authenticated caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload services.PostInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(r.Context(), principal.UserID, payload)
	if err != nil {
		writeError(w, r, err, "Failed to create post")
		return
	}

	log.Info().Int64("post_id", post.ID).Str("slug", post.Slug).Int64("user_id", principal.UserID).Msg("Post created")
	writeJSON(w, http.StatusCreated, post)
}

// Update replaces the editable fields of a post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	var payload services.PostInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
