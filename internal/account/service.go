package account

import (
	"context"
	"errors"
	"log"
	"time"

	"lingo/internal/progress"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

type Service struct {
	DB       *gorm.DB
	Progress *progress.Tracker
}

// Profile is the API view of a user, including the learned-words count
// aggregated from review progress.
type Profile struct {
	ID                 uint64     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	PhotoURL           string     `json:"photoUrl"`
	CurrentStreak      int        `json:"currentStreak"`
	CompletedCourseIDs []string   `json:"completedCourseIds"`
	LearnedWordsCount  int64      `json:"learnedWordsCount"`
	LastCompletionDate *time.Time `json:"lastCompletionDate"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (s *Service) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *Service) UpdateName(ctx context.Context, userID uint64, name string) (*Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(u).Update("name", name).Error; err != nil {
		return nil, err
	}
	u.Name = name
	return s.profile(ctx, u)
}

// CompleteStreak records today's practice. One completion per calendar day;
// a consecutive day extends the streak, any gap resets it to 1.
func (s *Service) CompleteStreak(ctx context.Context, userID uint64, now time.Time) (*Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	streak, changed := nextStreak(u.CurrentStreak, u.LastCompletionDate, now)
	if !changed {
		log.Printf("streak already completed today: user=%d streak=%d\n", userID, streak)
		return s.profile(ctx, u)
	}

	err = s.DB.WithContext(ctx).Model(u).Updates(map[string]any{
		"current_streak":       streak,
		"last_completion_date": now,
	}).Error
	if err != nil {
		return nil, err
	}

	u.CurrentStreak = streak
	u.LastCompletionDate = &now
	return s.profile(ctx, u)
}

// CompleteCourse marks a course finished; repeat completions are no-ops.
func (s *Service) CompleteCourse(ctx context.Context, userID uint64, courseID string) (*Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, id := range u.CompletedCourseIDs {
		if id == courseID {
			return s.profile(ctx, u)
		}
	}

	u.CompletedCourseIDs = append(u.CompletedCourseIDs, courseID)
	if err := s.DB.WithContext(ctx).Model(u).Update("completed_course_ids", u.CompletedCourseIDs).Error; err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *Service) user(ctx context.Context, userID uint64) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) profile(ctx context.Context, u *User) (*Profile, error) {
	learned, err := s.Progress.LearnedCount(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		PhotoURL:           u.PhotoURL,
		CurrentStreak:      u.CurrentStreak,
		CompletedCourseIDs: []string(u.CompletedCourseIDs),
		LearnedWordsCount:  learned,
		LastCompletionDate: u.LastCompletionDate,
		CreatedAt:          u.CreatedAt,
	}, nil
}

// nextStreak applies the daily-streak rules against calendar days in the
// timestamps' own locations. Returns the new streak and whether anything
// changed.
func nextStreak(current int, last *time.Time, now time.Time) (int, bool) {
	today := dayOf(now)
	if last != nil {
		lastDay := dayOf(*last)
		if lastDay.Equal(today) {
			return current, false
		}
		if lastDay.Equal(today.AddDate(0, 0, -1)) {
			return current + 1, true
		}
	}
	return 1, true
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
