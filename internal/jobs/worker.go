package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"lingo/internal/progress"
)

// Worker drains the job queue. Reminder dispatch re-reads the card's
// current review state so rescheduled or finished reviews are dropped
// instead of firing a stale reminder.
type Worker struct {
	ID    string
	Repo  *Repo
	Store progress.Store
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(job)
		}
	}
}

func (w *Worker) handle(job *Job) {
	switch job.Type {
	case JobTypeReviewReminder:
		w.handleReviewReminder(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleReviewReminder(job *Job) {
	type payload struct {
		FlashCardID string `json:"flash_card_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.FlashCardID == "" {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	st, err := w.Store.Get(context.Background(), job.UserID, p.FlashCardID)
	if err != nil {
		if errors.Is(err, progress.ErrStateNotFound) {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "store read error")
		return
	}

	// Review rescheduled past this job, or card already mastered.
	if st.Status == progress.StatusMastered || st.NextReviewDate.After(time.Now()) {
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	log.Printf("[REVIEW DUE] user=%d card=%s deck=%s status=%s\n", job.UserID, st.FlashCardID, st.DeckID, st.Status)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
