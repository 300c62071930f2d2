package deck

import (
	"time"

	"github.com/lib/pq"
)

// FlashCard is one vocabulary card. FlashCardID is the stable content id
// clients reference; the numeric primary key stays internal.
type FlashCard struct {
	ID          uint64    `gorm:"primaryKey"`
	FlashCardID string    `gorm:"uniqueIndex;not null"`
	Front       string    `gorm:"type:text;not null"`
	Back        string    `gorm:"type:text;not null"`
	Example     string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
}

// Deck groups cards. Cards live in their own table; the deck carries the
// member id list as authored.
type Deck struct {
	ID          uint64         `gorm:"primaryKey"`
	DeckID      string         `gorm:"uniqueIndex;not null"`
	Name        string         `gorm:"not null"`
	Description string         `gorm:"type:text;not null;default:''"`
	CardIDs     pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt   time.Time      `gorm:"not null;default:now()"`
}
