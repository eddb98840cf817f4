package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

type PostHandler struct {
	posts *repository.PostRepo
	log   *logger.Logger
}

func NewPostHandler(posts *repository.PostRepo, log *logger.Logger) *PostHandler {
	return &PostHandler{posts: posts, log: log}
}

type postRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch posts", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch posts", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Title is required", "Title must be a non-empty string"))
		return
	}

	post := &models.Post{
		Title:   strings.TrimSpace(*req.Title),
		Content: req.Content,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		h.log.Error("failed to create post", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create post", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post ID", "Post ID must be a valid number"))
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Post not found", fmt.Sprintf("Post with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch post", "post_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update post", errorDetails(err)))
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("Title is required", "Title must be a non-empty string"))
			return
		}
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.posts.Update(r.Context(), post); err != nil {
		h.log.Error("failed to update post", "post_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update post", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid post ID", "Post ID must be a valid number"))
		return
	}

	err = h.posts.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Post not found", fmt.Sprintf("Post with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete post", "post_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete post", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
