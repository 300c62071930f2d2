package progress

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// memStore is an in-memory Store for exercising the Tracker without a
// database. failInsert simulates a store outage for selected cards.
type memStore struct {
	next       uint64
	states     map[string]*ReviewState
	failInsert map[string]bool
}

func newMemStore() *memStore {
	return &memStore{states: map[string]*ReviewState{}, failInsert: map[string]bool{}}
}

func key(userID uint64, flashCardID string) string {
	return fmt.Sprintf("%d|%s", userID, flashCardID)
}

func (m *memStore) Get(_ context.Context, userID uint64, flashCardID string) (*ReviewState, error) {
	st, ok := m.states[key(userID, flashCardID)]
	if !ok {
		return nil, ErrStateNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStore) ListByDeck(_ context.Context, userID uint64, deckID string) ([]ReviewState, error) {
	var out []ReviewState
	for _, st := range m.states {
		if st.UserID == userID && st.DeckID == deckID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, st *ReviewState) error {
	if m.failInsert[st.FlashCardID] {
		return errors.New("store unavailable")
	}
	m.next++
	st.ID = m.next
	cp := *st
	m.states[key(st.UserID, st.FlashCardID)] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, st *ReviewState) error {
	cp := *st
	m.states[key(st.UserID, st.FlashCardID)] = &cp
	return nil
}

func (m *memStore) CountNotInStatus(_ context.Context, userID uint64, status string) (int64, error) {
	var n int64
	for _, st := range m.states {
		if st.UserID == userID && st.Status != status {
			n++
		}
	}
	return n, nil
}

func TestCardProgressSynthesizesDefaults(t *testing.T) {
	store := newMemStore()
	tr := NewTracker(store)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	st, err := tr.CardProgress(context.Background(), 1, "card-1", now)
	if err != nil {
		t.Fatalf("CardProgress: %v", err)
	}

	if st.Status != StatusNew {
		t.Errorf("status = %q, want %q", st.Status, StatusNew)
	}
	if st.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0", st.Repetitions)
	}
	if st.EaseFactor != 2.5 {
		t.Errorf("easeFactor = %v, want 2.5", st.EaseFactor)
	}
	if st.IntervalDays != 0 {
		t.Errorf("intervalDays = %d, want 0", st.IntervalDays)
	}
	if !st.NextReviewDate.Equal(now) || !st.LastReviewDate.Equal(now) {
		t.Errorf("dates = %v / %v, want both %v", st.NextReviewDate, st.LastReviewDate, now)
	}

	// A pure read must not create a row.
	if len(store.states) != 0 {
		t.Errorf("store has %d rows after read, want 0", len(store.states))
	}
	deck, err := tr.DeckProgress(context.Background(), 1, "deck-a")
	if err != nil {
		t.Fatalf("DeckProgress: %v", err)
	}
	if len(deck) != 0 {
		t.Errorf("deck progress has %d rows after read, want 0", len(deck))
	}

	// Repeated reads with the same clock are identical.
	again, err := tr.CardProgress(context.Background(), 1, "card-1", now)
	if err != nil {
		t.Fatalf("CardProgress: %v", err)
	}
	if again != st {
		t.Errorf("second read %+v differs from first %+v", again, st)
	}
}

func TestUpsertCardRoundTrip(t *testing.T) {
	tr := NewTracker(newMemStore())
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.AddDate(0, 0, 1)

	got, err := tr.UpsertCard(context.Background(), 7, "card-1", CardUpdate{
		DeckID:         "deck-a",
		Status:         StatusLearning,
		Repetitions:    1,
		EaseFactor:     2.6,
		IntervalDays:   1,
		NextReviewDate: t1,
		LastReviewDate: t0,
	})
	if err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}

	read, err := tr.CardProgress(context.Background(), 7, "card-1", time.Now())
	if err != nil {
		t.Fatalf("CardProgress: %v", err)
	}

	for _, st := range []ReviewState{got, read} {
		if st.DeckID != "deck-a" || st.Status != StatusLearning || st.Repetitions != 1 ||
			st.EaseFactor != 2.6 || st.IntervalDays != 1 {
			t.Errorf("unexpected state %+v", st)
		}
		if !st.NextReviewDate.Equal(t1) || !st.LastReviewDate.Equal(t0) {
			t.Errorf("dates = %v / %v, want %v / %v", st.NextReviewDate, st.LastReviewDate, t1, t0)
		}
	}
}

func TestUpsertCardRequiresDeckIDOnCreate(t *testing.T) {
	tr := NewTracker(newMemStore())

	_, err := tr.UpsertCard(context.Background(), 1, "card-1", CardUpdate{Status: StatusLearning})
	if !errors.Is(err, ErrDeckIDRequired) {
		t.Fatalf("err = %v, want ErrDeckIDRequired", err)
	}
}

func TestUpsertCardIgnoresDeckIDDrift(t *testing.T) {
	tr := NewTracker(newMemStore())
	ctx := context.Background()

	if _, err := tr.UpsertCard(ctx, 1, "card-1", CardUpdate{DeckID: "deck-a", Status: StatusLearning}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tr.UpsertCard(ctx, 1, "card-1", CardUpdate{DeckID: "deck-b", Status: StatusReviewing})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DeckID != "deck-a" {
		t.Errorf("deckId = %q after re-upsert, want deck-a", got.DeckID)
	}
	if got.Status != StatusReviewing {
		t.Errorf("status = %q, want reviewing", got.Status)
	}
}

func TestBatchUpsertSkipsEntriesMissingIdentity(t *testing.T) {
	store := newMemStore()
	tr := NewTracker(store)

	res, err := tr.BatchUpsert(context.Background(), 1, []BatchEntry{
		{FlashCardID: "", CardUpdate: CardUpdate{DeckID: "deck-a", Status: StatusLearning}},
		{FlashCardID: "card-2", CardUpdate: CardUpdate{DeckID: "deck-a", Status: StatusLearning}},
		{FlashCardID: "card-3", CardUpdate: CardUpdate{Status: StatusLearning}}, // no deckId
	})
	if err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}

	if res.Updated != 1 {
		t.Errorf("updated = %d, want 1", res.Updated)
	}
	if len(res.Results) != 1 || res.Results[0].FlashCardID != "card-2" || !res.Results[0].Success {
		t.Errorf("results = %+v, want single success for card-2", res.Results)
	}
	if len(store.states) != 1 {
		t.Errorf("store has %d rows, want 1", len(store.states))
	}
}

func TestBatchUpsertEntryFailureDoesNotAbortRest(t *testing.T) {
	store := newMemStore()
	store.failInsert["card-2"] = true
	tr := NewTracker(store)

	res, err := tr.BatchUpsert(context.Background(), 1, []BatchEntry{
		{FlashCardID: "card-1", CardUpdate: CardUpdate{DeckID: "deck-a", Status: StatusLearning}},
		{FlashCardID: "card-2", CardUpdate: CardUpdate{DeckID: "deck-a", Status: StatusLearning}},
		{FlashCardID: "card-3", CardUpdate: CardUpdate{DeckID: "deck-a", Status: StatusLearning}},
	})
	if err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}

	if res.Updated != 2 {
		t.Errorf("updated = %d, want 2", res.Updated)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %+v, want 3 entries", res.Results)
	}
	for _, r := range res.Results {
		wantSuccess := r.FlashCardID != "card-2"
		if r.Success != wantSuccess {
			t.Errorf("entry %s success = %v, want %v", r.FlashCardID, r.Success, wantSuccess)
		}
	}
}

func TestDeckStats(t *testing.T) {
	tr := NewTracker(newMemStore())
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 3)

	seed := map[string]string{
		"card-1": StatusNew,
		"card-2": StatusReviewing,
		"card-3": StatusMastered,
	}
	for id, status := range seed {
		if _, err := tr.UpsertCard(ctx, 1, id, CardUpdate{
			DeckID:         "deck-a",
			Status:         status,
			NextReviewDate: future,
			LastReviewDate: now,
		}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	t.Run("untracked cards count as new", func(t *testing.T) {
		stats, err := tr.DeckStats(ctx, 1, "deck-a", 5, now)
		if err != nil {
			t.Fatalf("DeckStats: %v", err)
		}
		want := DeckStats{NewCount: 3, ReviewingCount: 1, MasteredCount: 1}
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}
	})

	t.Run("zero totalCards counts only tracked rows", func(t *testing.T) {
		stats, err := tr.DeckStats(ctx, 1, "deck-a", 0, now)
		if err != nil {
			t.Fatalf("DeckStats: %v", err)
		}
		want := DeckStats{NewCount: 1, ReviewingCount: 1, MasteredCount: 1}
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}
	})

	t.Run("stale totalCards never goes negative", func(t *testing.T) {
		stats, err := tr.DeckStats(ctx, 1, "deck-a", 2, now)
		if err != nil {
			t.Fatalf("DeckStats: %v", err)
		}
		if stats.NewCount != 1 {
			t.Errorf("newCount = %d, want 1", stats.NewCount)
		}
	})
}

func TestDeckStatsUnknownStatus(t *testing.T) {
	tr := NewTracker(newMemStore())
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Unknown statuses land in no bucket but still count as tracked.
	if _, err := tr.UpsertCard(ctx, 1, "card-1", CardUpdate{
		DeckID: "deck-a", Status: "suspended", NextReviewDate: now.AddDate(0, 0, 1), LastReviewDate: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := tr.DeckStats(ctx, 1, "deck-a", 3, now)
	if err != nil {
		t.Fatalf("DeckStats: %v", err)
	}
	want := DeckStats{NewCount: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestDeckStatsDueBoundary(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		next    time.Time
		wantDue int
	}{
		{"exactly now is not due", now, 0},
		{"one microsecond past is due", now.Add(-time.Microsecond), 1},
		{"future is not due", now.Add(time.Microsecond), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker(newMemStore())
			ctx := context.Background()

			if _, err := tr.UpsertCard(ctx, 1, "card-1", CardUpdate{
				DeckID: "deck-a", Status: StatusReviewing, NextReviewDate: tc.next, LastReviewDate: now,
			}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			stats, err := tr.DeckStats(ctx, 1, "deck-a", 0, now)
			if err != nil {
				t.Fatalf("DeckStats: %v", err)
			}
			if stats.DueForReviewCount != tc.wantDue {
				t.Errorf("dueForReviewCount = %d, want %d", stats.DueForReviewCount, tc.wantDue)
			}
			// A due reviewing card is counted in both places.
			if stats.ReviewingCount != 1 {
				t.Errorf("reviewingCount = %d, want 1", stats.ReviewingCount)
			}
		})
	}
}

func TestLearnedCount(t *testing.T) {
	tr := NewTracker(newMemStore())
	ctx := context.Background()
	now := time.Now()

	seed := map[string]string{
		"card-1": StatusNew,
		"card-2": StatusLearning,
		"card-3": StatusMastered,
	}
	for id, status := range seed {
		if _, err := tr.UpsertCard(ctx, 1, id, CardUpdate{
			DeckID: "deck-a", Status: status, NextReviewDate: now, LastReviewDate: now,
		}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	n, err := tr.LearnedCount(ctx, 1)
	if err != nil {
		t.Fatalf("LearnedCount: %v", err)
	}
	if n != 2 {
		t.Errorf("learned = %d, want 2", n)
	}
}
