package progress

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by Store.Get when no row exists for the key.
var ErrStateNotFound = errors.New("review state not found")

// Store is the persistence surface the Tracker runs against, keyed by
// (userID, flashCardID). The Tracker holds no state of its own, so any
// number of Tracker instances can share one store.
type Store interface {
	Get(ctx context.Context, userID uint64, flashCardID string) (*ReviewState, error)
	ListByDeck(ctx context.Context, userID uint64, deckID string) ([]ReviewState, error)
	Insert(ctx context.Context, st *ReviewState) error
	Update(ctx context.Context, st *ReviewState) error
	CountNotInStatus(ctx context.Context, userID uint64, status string) (int64, error)
}
