package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/highscore-board/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var highscoresTemplate = template.Must(template.New("highscores.html").Funcs(template.FuncMap{
	"rank": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/highscores.html"))

type highscoresPage struct {
	Sort       domain.SortOrder
	Limit      int
	Highscores []domain.LeaderboardEntry
}

// ShowHighscores renders the public leaderboard page
func (h *Handler) ShowHighscores(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	page := highscoresPage{Sort: sort, Limit: limit, Highscores: entries}
	if err := highscoresTemplate.Execute(&buf, page); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
