package progress

import "time"

// Review lifecycle as reported by the client-side scheduler. The server
// stores whatever the client sends; unknown values round-trip untouched.
const (
	StatusNew       = "new"
	StatusLearning  = "learning"
	StatusReviewing = "reviewing"
	StatusMastered  = "mastered"
)

// DefaultEaseFactor is the conventional SM-2 starting multiplier.
const DefaultEaseFactor = 2.5

// ReviewState is the spaced-repetition state of one card for one user.
// One row per (UserID, FlashCardID); DeckID is fixed when the row is
// created. The SM-2 computation itself runs on the client — the server
// only persists and aggregates what the client reports.
type ReviewState struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"index;not null"`
	DeckID      string `gorm:"index;not null"`
	FlashCardID string `gorm:"not null"`

	Status       string  `gorm:"not null;default:'new'"`
	Repetitions  int     `gorm:"not null;default:0"`
	EaseFactor   float64 `gorm:"not null;default:2.5"`
	IntervalDays int     `gorm:"not null;default:0"`

	NextReviewDate time.Time `gorm:"not null"`
	LastReviewDate time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
