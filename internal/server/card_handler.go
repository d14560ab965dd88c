package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/at-ishikawa/learncards/internal/card"
	"github.com/at-ishikawa/learncards/internal/scheduler"
	"github.com/at-ishikawa/learncards/internal/translation"
	"github.com/at-ishikawa/learncards/internal/view"
)

type cardResponse struct {
	card.Card
	NextReview *time.Time `json:"next_review,omitempty"`
	Due        bool       `json:"due"`
}

type listCardsResponse struct {
	Cards      []cardResponse `json:"cards"`
	Total      int            `json:"total"`
	DueCount   int            `json:"due_count"`
	Categories []string       `json:"categories"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type translationResponse struct {
	Language string       `json:"language"`
	Content  card.Content `json:"content"`
}

func toCardResponse(c card.Card, now time.Time) cardResponse {
	return cardResponse{
		Card:       c,
		NextReview: scheduler.NextDueDate(c.Progress),
		Due:        scheduler.IsDue(c.Progress, now),
	}
}

func toCardResponses(cards []card.Card, now time.Time) []cardResponse {
	result := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		result = append(result, toCardResponse(c, now))
	}
	return result
}

// listCards never fails: an unreadable store is shown as no cards.
func (h *Handler) listCards(r *http.Request) []card.Card {
	cards, err := h.cards.ListAll(r.Context())
	if err != nil {
		slog.Default().Error("failed to list cards", slog.Any("error", err))
		return []card.Card{}
	}
	return cards
}

// ListCards handles GET /api/cards?view=due|all&category=<name>.
// The view defaults to due.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	mode := view.ModeDue
	if v := r.URL.Query().Get("view"); v != "" {
		parsed, err := view.ParseMode(v)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error(), err)
			return
		}
		mode = parsed
	}

	now := h.now()
	cards := h.listCards(r)
	selected := view.Select(cards, view.Filter{Mode: mode, Category: r.URL.Query().Get("category")}, now)
	respondJSON(w, http.StatusOK, listCardsResponse{
		Cards:      toCardResponses(selected, now),
		Total:      len(cards),
		DueCount:   view.DueCount(cards, now),
		Categories: view.Categories(cards),
	})
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, categoriesResponse{
		Categories: view.Categories(h.listCards(r)),
	})
}

// GetCard handles GET /api/cards/{id}.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.cards.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "failed to get card", err)
		return
	}
	if c == nil {
		respondError(w, r, http.StatusNotFound, "card not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, toCardResponse(*c, h.now()))
}

func (h *Handler) respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *card.ValidationError
	if errors.As(err, &validationErr) {
		slog.Default().Debug("invalid card", slog.Any("error", err))
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid card",
			Details: validationErr.Messages,
		})
		return
	}
	respondError(w, r, http.StatusInternalServerError, "failed to save card", err)
}

// CreateCard handles POST /api/cards.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var content card.Content
	if err := decodeJSON(r, &content); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	created, err := h.cards.Create(r.Context(), content)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	slog.Default().Info("created card", slog.String("id", created.ID))
	respondJSON(w, http.StatusCreated, toCardResponse(created, h.now()))
}

// UpdateCard handles PUT /api/cards/{id}. The id in the path wins over the body.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var content card.Content
	if err := decodeJSON(r, &content); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	updated, err := h.cards.UpdateContent(r.Context(), id, content)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	if updated == nil {
		respondError(w, r, http.StatusNotFound, "card not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, toCardResponse(*updated, h.now()))
}

// DeleteCard handles DELETE /api/cards/{id}. It always succeeds.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.cards.Delete(r.Context(), id)
	slog.Default().Info("deleted card", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ReviewCard handles POST /api/cards/{id}/review.
func (h *Handler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reviewed, err := h.cards.RecordReview(r.Context(), id)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "failed to record review", err)
		return
	}
	if reviewed == nil {
		respondError(w, r, http.StatusNotFound, "card not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, toCardResponse(*reviewed, h.now()))
}

// TranslateCard handles GET /api/cards/{id}/translation?lang=<code>.
// Fields that fail to translate are returned in their original language.
func (h *Handler) TranslateCard(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("lang")
	if language != "" && !translation.IsValidLanguage(language) {
		respondError(w, r, http.StatusBadRequest, "invalid language", nil)
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.cards.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "failed to get card", err)
		return
	}
	if c == nil {
		respondError(w, r, http.StatusNotFound, "card not found", nil)
		return
	}

	content := c.Content
	if h.translator != nil {
		content = h.translator.Card(r.Context(), c.Content, language)
	}
	respondJSON(w, http.StatusOK, translationResponse{
		Language: language,
		Content:  content,
	})
}
