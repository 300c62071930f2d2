package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lingo/internal/auth"
	"lingo/internal/jobs"
	"lingo/internal/progress"

	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	Tracker *progress.Tracker
	Jobs    *jobs.Repo
}

type reviewStateDTO struct {
	UserID         uint64    `json:"userId"`
	DeckID         string    `json:"deckId"`
	FlashCardID    string    `json:"flashCardId"`
	Status         string    `json:"status"`
	Repetitions    int       `json:"repetitions"`
	EaseFactor     float64   `json:"easeFactor"`
	IntervalDays   int       `json:"intervalDays"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	LastReviewDate time.Time `json:"lastReviewDate"`
}

func toDTO(st progress.ReviewState) reviewStateDTO {
	return reviewStateDTO{
		UserID:         st.UserID,
		DeckID:         st.DeckID,
		FlashCardID:    st.FlashCardID,
		Status:         st.Status,
		Repetitions:    st.Repetitions,
		EaseFactor:     st.EaseFactor,
		IntervalDays:   st.IntervalDays,
		NextReviewDate: st.NextReviewDate,
		LastReviewDate: st.LastReviewDate,
	}
}

func (h *ProgressHandler) DeckProgress(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	deckID := chi.URLParam(r, "deckId")

	states, err := h.Tracker.DeckProgress(r.Context(), uid, deckID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]reviewStateDTO, 0, len(states))
	for _, st := range states {
		out = append(out, toDTO(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProgressHandler) CardProgress(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	cardID := chi.URLParam(r, "flashCardId")

	st, err := h.Tracker.CardProgress(r.Context(), uid, cardID, time.Now())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(st))
}

type upsertProgressReq struct {
	DeckID         string  `json:"deckId"`
	Status         string  `json:"status"`
	Repetitions    int     `json:"repetitions"`
	EaseFactor     float64 `json:"easeFactor"`
	IntervalDays   int     `json:"intervalDays"`
	NextReviewDate string  `json:"nextReviewDate"`
	LastReviewDate string  `json:"lastReviewDate"`
}

func (req upsertProgressReq) toUpdate() (progress.CardUpdate, error) {
	next, err := time.Parse(time.RFC3339, strings.TrimSpace(req.NextReviewDate))
	if err != nil {
		return progress.CardUpdate{}, errors.New("invalid nextReviewDate (RFC3339)")
	}
	last, err := time.Parse(time.RFC3339, strings.TrimSpace(req.LastReviewDate))
	if err != nil {
		return progress.CardUpdate{}, errors.New("invalid lastReviewDate (RFC3339)")
	}
	return progress.CardUpdate{
		DeckID:         strings.TrimSpace(req.DeckID),
		Status:         strings.TrimSpace(req.Status),
		Repetitions:    req.Repetitions,
		EaseFactor:     req.EaseFactor,
		IntervalDays:   req.IntervalDays,
		NextReviewDate: next,
		LastReviewDate: last,
	}, nil
}

func (h *ProgressHandler) UpsertCard(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	cardID := chi.URLParam(r, "flashCardId")

	var req upsertProgressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := h.Tracker.UpsertCard(r.Context(), uid, cardID, update)
	if err != nil {
		if errors.Is(err, progress.ErrDeckIDRequired) {
			http.Error(w, "deckId is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// Schedule the due-review reminder after the write committed.
	if h.Jobs != nil && st.NextReviewDate.After(time.Now()) {
		if err := h.Jobs.EnqueueReviewReminder(uid, cardID, st.NextReviewDate); err != nil {
			http.Error(w, "failed enqueue reminder", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, toDTO(st))
}

type batchEntryReq struct {
	FlashCardID string `json:"flashCardId"`
	upsertProgressReq
}

type batchProgressReq struct {
	ProgressUpdates []batchEntryReq `json:"progressUpdates"`
}

type entryResultDTO struct {
	FlashCardID string `json:"flashCardId"`
	Success     bool   `json:"success"`
}

func (h *ProgressHandler) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req batchProgressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ProgressUpdates == nil {
		http.Error(w, "progressUpdates array is required", http.StatusBadRequest)
		return
	}

	entries := make([]progress.BatchEntry, 0, len(req.ProgressUpdates))
	var malformed []entryResultDTO
	for _, e := range req.ProgressUpdates {
		update, err := e.toUpdate()
		if err != nil {
			// Identity-less entries are silently skipped, matching the
			// single-upsert contract; entries with ids but broken dates
			// are reported as failed.
			if strings.TrimSpace(e.FlashCardID) == "" || strings.TrimSpace(e.DeckID) == "" {
				continue
			}
			malformed = append(malformed, entryResultDTO{FlashCardID: e.FlashCardID})
			continue
		}
		entries = append(entries, progress.BatchEntry{
			FlashCardID: strings.TrimSpace(e.FlashCardID),
			CardUpdate:  update,
		})
	}

	res, err := h.Tracker.BatchUpsert(r.Context(), uid, entries)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	results := make([]entryResultDTO, 0, len(res.Results)+len(malformed))
	for _, er := range res.Results {
		results = append(results, entryResultDTO{FlashCardID: er.FlashCardID, Success: er.Success})
	}
	results = append(results, malformed...)

	writeJSON(w, http.StatusOK, map[string]any{
		"updated": res.Updated,
		"results": results,
	})
}

func (h *ProgressHandler) DeckStats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	deckID := chi.URLParam(r, "deckId")

	totalCards := 0
	if v := strings.TrimSpace(r.URL.Query().Get("totalCards")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			totalCards = n
		}
	}

	stats, err := h.Tracker.DeckStats(r.Context(), uid, deckID, totalCards, time.Now())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"newCount":          stats.NewCount,
		"learningCount":     stats.LearningCount,
		"reviewingCount":    stats.ReviewingCount,
		"masteredCount":     stats.MasteredCount,
		"dueForReviewCount": stats.DueForReviewCount,
	})
}
