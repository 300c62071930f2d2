package progress

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormStore backs Store with a relational database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Get(ctx context.Context, userID uint64, flashCardID string) (*ReviewState, error) {
	var st ReviewState
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND flash_card_id = ?", userID, flashCardID).
		First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *GormStore) ListByDeck(ctx context.Context, userID uint64, deckID string) ([]ReviewState, error) {
	var out []ReviewState
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) Insert(ctx context.Context, st *ReviewState) error {
	return s.DB.WithContext(ctx).Create(st).Error
}

func (s *GormStore) Update(ctx context.Context, st *ReviewState) error {
	return s.DB.WithContext(ctx).Save(st).Error
}

func (s *GormStore) CountNotInStatus(ctx context.Context, userID uint64, status string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&ReviewState{}).
		Where("user_id = ? AND status <> ?", userID, status).
		Count(&n).Error
	return n, err
}
