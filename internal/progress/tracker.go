package progress

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDeckIDRequired is returned when an upsert would create a row without
// knowing which deck the card belongs to.
var ErrDeckIDRequired = errors.New("deckId is required")

// Tracker owns per-user per-card review bookkeeping. It trusts the
// client's spaced-repetition computation: status and scheduling fields are
// stored as supplied, never derived or validated here.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// CardUpdate carries the client-computed outcome of one review.
type CardUpdate struct {
	DeckID         string
	Status         string
	Repetitions    int
	EaseFactor     float64
	IntervalDays   int
	NextReviewDate time.Time
	LastReviewDate time.Time
}

// BatchEntry is one card's update inside a batch sync.
type BatchEntry struct {
	FlashCardID string
	CardUpdate
}

// EntryResult reports the outcome for one batch entry. Entries skipped for
// missing identity fields produce no result at all.
type EntryResult struct {
	FlashCardID string
	Success     bool
}

type BatchResult struct {
	Updated int
	Results []EntryResult
}

// DeckStats buckets a user's tracked cards within one deck.
type DeckStats struct {
	NewCount          int
	LearningCount     int
	ReviewingCount    int
	MasteredCount     int
	DueForReviewCount int
}

// DeckProgress returns every stored state for the user within the deck.
// Cards without a row are absent; no defaults are synthesized here.
func (t *Tracker) DeckProgress(ctx context.Context, userID uint64, deckID string) ([]ReviewState, error) {
	states, err := t.store.ListByDeck(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("list deck progress: %w", err)
	}
	return states, nil
}

// CardProgress returns the stored state, or a synthesized new-card state
// when the pair was never reviewed. The synthesized value is built from
// now and is not persisted — reads have no side effects.
func (t *Tracker) CardProgress(ctx context.Context, userID uint64, flashCardID string, now time.Time) (ReviewState, error) {
	st, err := t.store.Get(ctx, userID, flashCardID)
	if errors.Is(err, ErrStateNotFound) {
		return initialState(userID, flashCardID, now), nil
	}
	if err != nil {
		return ReviewState{}, fmt.Errorf("get card progress: %w", err)
	}
	return *st, nil
}

func initialState(userID uint64, flashCardID string, now time.Time) ReviewState {
	return ReviewState{
		UserID:         userID,
		FlashCardID:    flashCardID,
		Status:         StatusNew,
		Repetitions:    0,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   0,
		NextReviewDate: now,
		LastReviewDate: now,
	}
}

// UpsertCard overwrites the mutable fields for (userID, flashCardID),
// creating the row on first report. DeckID is part of the row's identity:
// it is required on create and a different deckId on a later update is
// silently ignored. Returns the row as read back from the store.
func (t *Tracker) UpsertCard(ctx context.Context, userID uint64, flashCardID string, in CardUpdate) (ReviewState, error) {
	existing, err := t.store.Get(ctx, userID, flashCardID)
	switch {
	case errors.Is(err, ErrStateNotFound):
		if in.DeckID == "" {
			return ReviewState{}, ErrDeckIDRequired
		}
		st := ReviewState{
			UserID:      userID,
			DeckID:      in.DeckID,
			FlashCardID: flashCardID,
		}
		applyUpdate(&st, in)
		if err := t.store.Insert(ctx, &st); err != nil {
			return ReviewState{}, fmt.Errorf("insert card progress: %w", err)
		}
	case err != nil:
		return ReviewState{}, fmt.Errorf("get card progress: %w", err)
	default:
		applyUpdate(existing, in)
		if err := t.store.Update(ctx, existing); err != nil {
			return ReviewState{}, fmt.Errorf("update card progress: %w", err)
		}
	}

	updated, err := t.store.Get(ctx, userID, flashCardID)
	if err != nil {
		return ReviewState{}, fmt.Errorf("read back card progress: %w", err)
	}
	return *updated, nil
}

func applyUpdate(st *ReviewState, in CardUpdate) {
	st.Status = in.Status
	st.Repetitions = in.Repetitions
	st.EaseFactor = in.EaseFactor
	st.IntervalDays = in.IntervalDays
	st.NextReviewDate = in.NextReviewDate
	st.LastReviewDate = in.LastReviewDate
}

// BatchUpsert applies entries independently, in order but without any
// cross-entry transaction. Entries missing a card or deck id are skipped
// and excluded from the result; a store failure on one entry is reported
// for that entry and does not abort the rest.
func (t *Tracker) BatchUpsert(ctx context.Context, userID uint64, entries []BatchEntry) (BatchResult, error) {
	res := BatchResult{Results: []EntryResult{}}
	for _, e := range entries {
		if e.FlashCardID == "" || e.DeckID == "" {
			continue
		}
		if _, err := t.UpsertCard(ctx, userID, e.FlashCardID, e.CardUpdate); err != nil {
			res.Results = append(res.Results, EntryResult{FlashCardID: e.FlashCardID})
			continue
		}
		res.Updated++
		res.Results = append(res.Results, EntryResult{FlashCardID: e.FlashCardID, Success: true})
	}
	return res, nil
}

// DeckStats aggregates the user's tracked rows for a deck. Each row lands
// in at most one status bucket; rows with an unrecognized status fall into
// no bucket but still count as tracked. The due count is independent of
// bucketing and uses a strict comparison: due means nextReviewDate is in
// the past, not equal to now. totalCards is the deck size as the caller
// knows it; tracked rows are subtracted from it so never-reviewed cards
// count as new. Zero totalCards means untracked cards are not counted.
func (t *Tracker) DeckStats(ctx context.Context, userID uint64, deckID string, totalCards int, now time.Time) (DeckStats, error) {
	states, err := t.store.ListByDeck(ctx, userID, deckID)
	if err != nil {
		return DeckStats{}, fmt.Errorf("list deck progress: %w", err)
	}

	var stats DeckStats
	for _, st := range states {
		switch st.Status {
		case StatusNew:
			stats.NewCount++
		case StatusLearning:
			stats.LearningCount++
		case StatusReviewing:
			stats.ReviewingCount++
		case StatusMastered:
			stats.MasteredCount++
		}

		if now.After(st.NextReviewDate) {
			stats.DueForReviewCount++
		}
	}

	if untracked := totalCards - len(states); untracked > 0 {
		stats.NewCount += untracked
	}
	return stats, nil
}

// LearnedCount is the number of cards the user has moved past new, across
// all decks.
func (t *Tracker) LearnedCount(ctx context.Context, userID uint64) (int64, error) {
	n, err := t.store.CountNotInStatus(ctx, userID, StatusNew)
	if err != nil {
		return 0, fmt.Errorf("count learned cards: %w", err)
	}
	return n, nil
}
