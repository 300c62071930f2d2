package exercise

import (
	"encoding/json"

	"github.com/lib/pq"
)

// Exercise type tags as they appear on the wire and in set refs.
const (
	TypeReorder        = "reorder"
	TypeMultipleChoice = "multiple_choice"
	TypeFillBlank      = "fill_blank"
)

// ReorderExercise asks the learner to rebuild a sentence from shuffled words.
type ReorderExercise struct {
	ID          uint64         `gorm:"primaryKey"`
	Sentence    string         `gorm:"type:text;not null"`
	Words       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Translation string         `gorm:"type:text;not null;default:''"`
}

type MultipleChoiceExercise struct {
	ID           uint64         `gorm:"primaryKey"`
	Question     string         `gorm:"type:text;not null"`
	Options      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CorrectIndex int            `gorm:"not null;default:0"`
	PracticeType string         `gorm:"index;not null"`
}

// FillBlankExercise marks the gap in Sentence with ___.
type FillBlankExercise struct {
	ID       uint64 `gorm:"primaryKey"`
	Sentence string `gorm:"type:text;not null"`
	Answer   string `gorm:"not null"`
	Hint     string `gorm:"type:text;not null;default:''"`
}

// ExerciseSet is an ordered lesson. Refs point at exercises by type and
// position within that type's table order.
type ExerciseSet struct {
	ID    uint64          `gorm:"primaryKey"`
	SetID string          `gorm:"uniqueIndex;not null"`
	Name  string          `gorm:"not null"`
	Refs  json.RawMessage `gorm:"type:jsonb;not null;default:'[]'::jsonb"`
}

// Ref is one entry of ExerciseSet.Refs.
type Ref struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}
