package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/repository"
)

// ReplaceHighscoreRequest is the body of PUT /api/highscores/{id}
type ReplaceHighscoreRequest struct {
	OverallHighscore *int `json:"overall_highscore"`
}

// NewPlayerRequest is the body of POST /api/new_player
type NewPlayerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListHighscores handles GET /api/highscores
func (h *Handler) ListHighscores(w http.ResponseWriter, r *http.Request) {
	limit, sort, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries, err := h.service.List(r.Context(), limit, sort)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// GetHighscore handles GET /api/highscores/{id}
func (h *Handler) GetHighscore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	player, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, player)
}

// SubmitHighscore handles POST /api/highscores. It answers 201 when a record
// was created or a level score improved, and 200 when the score was not a new high.
func (h *Handler) SubmitHighscore(w http.ResponseWriter, r *http.Request) {
	var payload domain.SubmissionPayload
	if err := decodeBody(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmd, err := payload.Command()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	player, created, err := h.service.SubmitHighscore(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, player)
}

// ReplaceHighscore handles PUT /api/highscores/{id}
func (h *Handler) ReplaceHighscore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ReplaceHighscoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.OverallHighscore == nil {
		h.writeError(w, r, fmt.Errorf("%w: overall_highscore is required", domain.ErrInvalidArgument))
		return
	}

	player, err := h.service.ReplaceHighscore(r.Context(), id, *req.OverallHighscore)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, player)
}

// DeleteHighscore handles DELETE /api/highscores/{id}
func (h *Handler) DeleteHighscore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NewPlayer handles POST /api/new_player
func (h *Handler) NewPlayer(w http.ResponseWriter, r *http.Request) {
	var req NewPlayerRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	player, err := h.service.NewPlayer(r.Context(), domain.NewPlayer{Name: req.Name, Email: req.Email})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, player)
}

// decodeBody decodes exactly one JSON value, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidArgument, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", domain.ErrInvalidArgument)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q is not a positive integer", domain.ErrInvalidArgument, raw)
	}
	return id, nil
}

// listParams reads limit and sort. An absent limit means the maximum; a
// non-integer limit is rejected.
func listParams(r *http.Request) (int, domain.SortOrder, error) {
	q := r.URL.Query()
	limit := repository.MaxLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", fmt.Errorf("%w: limit %q is not an integer", domain.ErrInvalidArgument, raw)
		}
		limit = n
	}
	return limit, domain.ParseSortOrder(q.Get("sort")), nil
}
