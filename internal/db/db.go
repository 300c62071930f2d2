package db

import (
	"fmt"

	"lingo/internal/account"
	"lingo/internal/deck"
	"lingo/internal/exercise"
	"lingo/internal/jobs"
	"lingo/internal/progress"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&account.User{},
		&deck.FlashCard{},
		&deck.Deck{},
		&exercise.ReorderExercise{},
		&exercise.MultipleChoiceExercise{},
		&exercise.FillBlankExercise{},
		&exercise.ExerciseSet{},
		&progress.ReviewState{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// One review state per (user, card); deck membership is fixed at
	// creation, so the deck column is not part of the key.
	if err := gdb.Exec(`create unique index if not exists uq_review_states_user_card on review_states(user_id, flash_card_id);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_review_states_user_deck on review_states(user_id, deck_id);`,
		`create index if not exists idx_review_states_user_due on review_states(user_id, next_review_date);`,
		`create index if not exists idx_review_states_user_status on review_states(user_id, status);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
