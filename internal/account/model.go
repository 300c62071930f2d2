package account

import (
	"time"

	"github.com/lib/pq"
)

// User is a learner profile. Rows are provisioned by the identity service;
// this backend only reads and updates profile fields.
type User struct {
	ID                 uint64         `gorm:"primaryKey"`
	Email              string         `gorm:"uniqueIndex;not null"`
	Name               string         `gorm:"not null;default:''"`
	PhotoURL           string         `gorm:"not null;default:''"`
	CurrentStreak      int            `gorm:"not null;default:0"`
	CompletedCourseIDs pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	LastCompletionDate *time.Time     `gorm:"type:timestamptz"`
	CreatedAt          time.Time      `gorm:"not null;default:now()"`
}
