package deck

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Service is the read side of the flashcard catalog. Content is seeded
// out of band; the API never mutates it.
type Service struct {
	DB *gorm.DB
}

func (s *Service) List(ctx context.Context, page, limit int) ([]FlashCard, error) {
	var cards []FlashCard
	err := s.DB.WithContext(ctx).
		Order("id asc").
		Offset(page * limit).
		Limit(limit).
		Find(&cards).Error
	return cards, err
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&FlashCard{}).Count(&n).Error
	return n, err
}

func (s *Service) Get(ctx context.Context, flashCardID string) (*FlashCard, error) {
	var card FlashCard
	err := s.DB.WithContext(ctx).Where("flash_card_id = ?", flashCardID).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Service) ByIDs(ctx context.Context, ids []string) ([]FlashCard, error) {
	var cards []FlashCard
	err := s.DB.WithContext(ctx).Where("flash_card_id IN ?", ids).Find(&cards).Error
	return cards, err
}

func (s *Service) Decks(ctx context.Context) ([]Deck, error) {
	var decks []Deck
	err := s.DB.WithContext(ctx).Order("id asc").Find(&decks).Error
	return decks, err
}

// WithCards is a deck joined with its member cards.
type WithCards struct {
	Deck
	Cards []FlashCard
}

func (s *Service) DeckWithCards(ctx context.Context, deckID string) (*WithCards, error) {
	var d Deck
	err := s.DB.WithContext(ctx).Where("deck_id = ?", deckID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cards, err := s.ByIDs(ctx, []string(d.CardIDs))
	if err != nil {
		return nil, err
	}
	return &WithCards{Deck: d, Cards: cards}, nil
}
