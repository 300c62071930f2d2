package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lingo/internal/deck"

	"github.com/go-chi/chi/v5"
)

type FlashCardHandler struct {
	Svc *deck.Service
}

type flashCardDTO struct {
	FlashCardID string    `json:"flashCardId"`
	Front       string    `json:"front"`
	Back        string    `json:"back"`
	Example     string    `json:"example"`
	CreatedAt   time.Time `json:"createdAt"`
}

type deckDTO struct {
	DeckID      string   `json:"deckId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CardIDs     []string `json:"cardIds"`
}

func cardToDTO(c deck.FlashCard) flashCardDTO {
	return flashCardDTO{
		FlashCardID: c.FlashCardID,
		Front:       c.Front,
		Back:        c.Back,
		Example:     c.Example,
		CreatedAt:   c.CreatedAt,
	}
}

func cardsToDTO(cards []deck.FlashCard) []flashCardDTO {
	out := make([]flashCardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToDTO(c))
	}
	return out
}

func (h *FlashCardHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 0
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	limit := 5
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	cards, err := h.Svc.List(r.Context(), page, limit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cardsToDTO(cards))
}

func (h *FlashCardHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.Count(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *FlashCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	card, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, deck.ErrNotFound) {
			http.Error(w, "flashcard not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cardToDTO(*card))
}

type byIDsReq struct {
	IDs []string `json:"ids"`
}

func (h *FlashCardHandler) ByIDs(w http.ResponseWriter, r *http.Request) {
	var req byIDsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.IDs == nil {
		http.Error(w, "ids array is required", http.StatusBadRequest)
		return
	}

	cards, err := h.Svc.ByIDs(r.Context(), req.IDs)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cardsToDTO(cards))
}

func (h *FlashCardHandler) Decks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.Svc.Decks(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]deckDTO, 0, len(decks))
	for _, d := range decks {
		out = append(out, deckDTO{
			DeckID:      d.DeckID,
			Name:        d.Name,
			Description: d.Description,
			CardIDs:     []string(d.CardIDs),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FlashCardHandler) DeckWithCards(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckId")

	d, err := h.Svc.DeckWithCards(r.Context(), deckID)
	if err != nil {
		if errors.Is(err, deck.ErrNotFound) {
			http.Error(w, "deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deckId":      d.DeckID,
		"name":        d.Name,
		"description": d.Description,
		"cards":       cardsToDTO(d.Cards),
	})
}
