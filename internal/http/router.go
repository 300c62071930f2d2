package http

import (
	"net/http"
	"time"

	"lingo/internal/account"
	"lingo/internal/auth"
	"lingo/internal/config"
	"lingo/internal/deck"
	"lingo/internal/exercise"
	"lingo/internal/http/handler"
	"lingo/internal/jobs"
	"lingo/internal/progress"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	tracker := progress.NewTracker(progress.NewGormStore(db))
	jobsRepo := &jobs.Repo{DB: db}

	progH := &handler.ProgressHandler{Tracker: tracker, Jobs: jobsRepo}
	r.Route("/api/progress", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/card/{flashCardId}", progH.CardProgress)
		r.Put("/card/{flashCardId}", progH.UpsertCard)
		r.Get("/stats/{deckId}", progH.DeckStats)
		r.Post("/batch", progH.BatchUpsert)
		r.Get("/{deckId}", progH.DeckProgress)
	})

	cardH := &handler.FlashCardHandler{Svc: &deck.Service{DB: db}}
	r.Route("/api/flashcards", func(r chi.Router) {
		r.Get("/", cardH.List)
		r.Get("/count", cardH.Count)
		r.Get("/decks", cardH.Decks)
		r.Get("/decks/{deckId}", cardH.DeckWithCards)
		r.Post("/by-ids", cardH.ByIDs)
		r.Get("/{id}", cardH.Get)
	})

	exH := &handler.ExerciseHandler{Svc: &exercise.Service{DB: db}}
	r.Route("/api/exercises", func(r chi.Router) {
		r.Get("/reorder", exH.Reorder)
		r.Get("/multiple-choice", exH.MultipleChoice)
		r.Get("/multiple-choice/{type}", exH.MultipleChoiceByType)
		r.Get("/fill-blank", exH.FillBlank)
		r.Get("/sets", exH.Sets)
		r.Get("/sets/{setId}", exH.SetByID)
		r.Get("/courses", exH.Courses)
		r.Get("/random", exH.Random)
	})

	accH := &handler.AccountHandler{Svc: &account.Service{DB: db, Progress: tracker}}
	r.Route("/api/users", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/me", accH.Me)
		r.Put("/name", accH.UpdateName)
		r.Post("/streak", accH.CompleteStreak)
		r.Post("/complete-course", accH.CompleteCourse)
	})

	return r
}
