package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/at-ishikawa/learncards/internal/view"
)

var templateFuncs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Local().Format("2006-01-02")
	},
}

type pageData struct {
	Mode       view.Mode
	Category   string
	Categories []string
	Total      int
	DueCount   int
	Cards      []cardResponse
}

// ServePage handles GET /. Unknown view modes fall back to due,
// and the category filter only applies to the all view.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	mode, err := view.ParseMode(r.URL.Query().Get("view"))
	if err != nil {
		mode = view.ModeDue
	}
	category := r.URL.Query().Get("category")
	if category == "" || mode == view.ModeDue {
		category = view.AllCategories
	}

	now := h.now()
	cards := h.listCards(r)
	data := pageData{
		Mode:       mode,
		Category:   category,
		Categories: view.Categories(cards),
		Total:      len(cards),
		DueCount:   view.DueCount(cards, now),
		Cards:      toCardResponses(view.Select(cards, view.Filter{Mode: mode, Category: category}, now), now),
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		slog.Default().Error("failed to render page", slog.Any("error", err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
