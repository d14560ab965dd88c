// Package server exposes cards over a JSON API and an HTML viewer.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/at-ishikawa/learncards/internal/card"
)

//go:generate mockgen -source=server.go -destination=../mocks/server/mock_server.go -package=mock_server

//go:embed templates/*.html
var templateFiles embed.FS

// CardService is the card repository as seen by the HTTP layer.
type CardService interface {
	ListAll(ctx context.Context) ([]card.Card, error)
	Get(ctx context.Context, id string) (*card.Card, error)
	Create(ctx context.Context, content card.Content) (card.Card, error)
	UpdateContent(ctx context.Context, id string, content card.Content) (*card.Card, error)
	RecordReview(ctx context.Context, id string) (*card.Card, error)
	Delete(ctx context.Context, id string)
}

// CardTranslator translates the text fields of a card.
type CardTranslator interface {
	Card(ctx context.Context, content card.Content, targetLanguage string) card.Content
}

// Handler serves the card API and the viewer page.
type Handler struct {
	cards      CardService
	translator CardTranslator
	page       *template.Template
	now        func() time.Time
}

// NewHandler creates a Handler. translator may be nil, in which case
// translation requests return the original content.
func NewHandler(cards CardService, translator CardTranslator) (*Handler, error) {
	page, err := template.New("index.html").Funcs(templateFuncs).ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS > %w", err)
	}
	return &Handler{
		cards:      cards,
		translator: translator,
		page:       page,
		now:        time.Now,
	}, nil
}

// Routes returns the router with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.ServePage)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", h.ListCards)
			r.Post("/", h.CreateCard)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCard)
				r.Put("/", h.UpdateCard)
				r.Delete("/", h.DeleteCard)
				r.Post("/review", h.ReviewCard)
				r.Get("/translation", h.TranslateCard)
			})
		})
	})
	return r
}
