package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/media"
)

const (
	maxUploadBytes = 10 << 20 // matches the Telegram-side download cap

	healthCheckTimeout = 5 * time.Second
)

var validate = validator.New()

// friendJSON is the wire representation of a friend record.
type friendJSON struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	Profession            string  `json:"profession"`
	ProfessionDescription *string `json:"profession_description"`
	PhotoURL              string  `json:"photo_url"`
}

func toFriendJSON(f *database.Friend) friendJSON {
	out := friendJSON{
		ID:         f.ID,
		Name:       f.Name,
		Profession: f.Profession,
		PhotoURL:   f.PhotoURL,
	}
	if f.ProfessionDescription.Valid {
		desc := f.ProfessionDescription.String
		out.ProfessionDescription = &desc
	}
	return out
}

// createFriendForm holds the validated multipart fields of a create request.
type createFriendForm struct {
	Name                  string `validate:"required,min=1,max=255"`
	Profession            string `validate:"required,min=1,max=255"`
	ProfessionDescription string
}

// askRequest is the body of an ask-about-friend request.
type askRequest struct {
	Question string `json:"question" validate:"required,min=1,max=500"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Friends directory API is running",
	})
}

func (h *Handler) handleCreateFriend(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "create_friend")
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "request must be multipart form data")
		return
	}

	form := createFriendForm{
		Name:                  r.FormValue("name"),
		Profession:            r.FormValue("profession"),
		ProfessionDescription: r.FormValue("profession_description"),
	}
	if err := validate.Struct(form); err != nil {
		log.WarnContext(ctx, "Create friend validation failed", "error", err)
		respondError(w, http.StatusUnprocessableEntity, "name and profession are required and must be 1-255 characters")
		return
	}

	photo, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "photo file is required")
		return
	}
	defer photo.Close()

	data, err := io.ReadAll(io.LimitReader(photo, maxUploadBytes))
	if err != nil {
		log.ErrorContext(ctx, "Failed to read photo upload", "error", err)
		respondError(w, http.StatusInternalServerError, "could not read uploaded file")
		return
	}

	// Field validation passed; the image is processed before any row is
	// written so a rejected photo leaves no record behind.
	_, photoURL, err := h.processor.Process(data)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrInvalidImage), errors.Is(err, media.ErrImageTooLarge):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.ErrorContext(ctx, "Failed to store photo", "error", err)
			respondError(w, http.StatusInternalServerError, "could not save file")
		}
		return
	}

	friend := &database.Friend{
		Name:       form.Name,
		Profession: form.Profession,
		PhotoURL:   photoURL,
	}
	if form.ProfessionDescription != "" {
		friend.ProfessionDescription = sql.NullString{String: form.ProfessionDescription, Valid: true}
	}

	if err := h.store.CreateFriend(ctx, friend); err != nil {
		log.ErrorContext(ctx, "Failed to create friend record", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create friend")
		return
	}

	log.InfoContext(ctx, "Friend created", "friend_id", friend.ID, "name", friend.Name)
	respondJSON(w, http.StatusCreated, toFriendJSON(friend))
}

func (h *Handler) handleListFriends(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "list_friends")
	ctx := r.Context()

	friends, err := h.store.ListFriends(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list friends", "error", err)
		respondError(w, http.StatusInternalServerError, "could not list friends")
		return
	}

	out := make([]friendJSON, 0, len(friends))
	for i := range friends {
		out = append(out, toFriendJSON(&friends[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetFriend(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "get_friend")
	ctx := r.Context()

	id, ok := friendID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Friend not found")
		return
	}

	friend, err := h.store.GetFriend(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrFriendNotFound) {
			respondError(w, http.StatusNotFound, "Friend not found")
			return
		}
		log.ErrorContext(ctx, "Failed to get friend", "friend_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not get friend")
		return
	}

	respondJSON(w, http.StatusOK, toFriendJSON(friend))
}

func (h *Handler) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "delete_friend")
	ctx := r.Context()

	id, ok := friendID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Friend not found")
		return
	}

	if err := h.store.DeleteFriend(ctx, id); err != nil {
		if errors.Is(err, database.ErrFriendNotFound) {
			respondError(w, http.StatusNotFound, "Friend not found")
			return
		}
		log.ErrorContext(ctx, "Failed to delete friend", "friend_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not delete friend")
		return
	}

	// The photo file is intentionally left in place.
	log.InfoContext(ctx, "Friend deleted", "friend_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "ask")
	ctx := r.Context()

	id, ok := friendID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Friend not found")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "request body must be JSON with a question field")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "question must be 1-500 characters")
		return
	}

	friend, err := h.store.GetFriend(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrFriendNotFound) {
			respondError(w, http.StatusNotFound, "Friend not found")
			return
		}
		log.ErrorContext(ctx, "Failed to get friend for ask", "friend_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not get friend")
		return
	}

	text, err := h.provider.Ask(ctx, friend.Profession, friend.ProfessionDescription.String, req.Question)
	if err != nil {
		log.ErrorContext(ctx, "Answer provider failed", "friend_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Error processing request")
		return
	}

	log.InfoContext(ctx, "Answer generated", "friend_id", id, "length", len(text))
	respondJSON(w, http.StatusOK, map[string]string{"answer": text})
}

// healthStatus is the structured body of a health check response.
type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	MediaDir string `json:"media_dir"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := healthStatus{Status: "healthy", Database: "ok", MediaDir: "ok"}

	if err := h.store.Ping(ctx); err != nil {
		log.ErrorContext(ctx, "Database health check failed", "error", err)
		status.Database = fmt.Sprintf("error: %v", err)
		status.Status = "unhealthy"
	}

	if !h.processor.Healthy() {
		log.WarnContext(ctx, "Media directory health check failed", "dir", h.processor.Dir())
		status.MediaDir = "not found"
		status.Status = "unhealthy"
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

func friendID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
