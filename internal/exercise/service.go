package exercise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Service is the read side of the exercise catalog.
type Service struct {
	DB *gorm.DB
}

// Item is a resolved exercise, tagged for the client.
type Item struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ResolvedSet is a set with its refs expanded into concrete exercises.
type ResolvedSet struct {
	SetID     string `json:"setId"`
	Name      string `json:"name"`
	Exercises []Item `json:"exercises"`
}

func (s *Service) Reorder(ctx context.Context) ([]ReorderExercise, error) {
	var out []ReorderExercise
	err := s.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Service) MultipleChoice(ctx context.Context) ([]MultipleChoiceExercise, error) {
	var out []MultipleChoiceExercise
	err := s.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Service) MultipleChoiceByType(ctx context.Context, practiceType string) ([]MultipleChoiceExercise, error) {
	var out []MultipleChoiceExercise
	err := s.DB.WithContext(ctx).
		Where("practice_type = ?", practiceType).
		Order("id asc").
		Find(&out).Error
	return out, err
}

func (s *Service) FillBlank(ctx context.Context) ([]FillBlankExercise, error) {
	var out []FillBlankExercise
	err := s.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Service) Sets(ctx context.Context) ([]ExerciseSet, error) {
	var out []ExerciseSet
	err := s.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *Service) SetByID(ctx context.Context, setID string) (*ResolvedSet, error) {
	var set ExerciseSet
	err := s.DB.WithContext(ctx).Where("set_id = ?", setID).First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	reorder, mc, fb, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	refs, err := parseRefs(set.Refs)
	if err != nil {
		return nil, err
	}
	return &ResolvedSet{
		SetID:     set.SetID,
		Name:      set.Name,
		Exercises: resolve(set.SetID, refs, reorder, mc, fb),
	}, nil
}

// Courses resolves every set.
func (s *Service) Courses(ctx context.Context) ([]ResolvedSet, error) {
	sets, err := s.Sets(ctx)
	if err != nil {
		return nil, err
	}

	reorder, mc, fb, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	courses := make([]ResolvedSet, 0, len(sets))
	for _, set := range sets {
		refs, err := parseRefs(set.Refs)
		if err != nil {
			return nil, err
		}
		courses = append(courses, ResolvedSet{
			SetID:     set.SetID,
			Name:      set.Name,
			Exercises: resolve(set.SetID, refs, reorder, mc, fb),
		})
	}
	return courses, nil
}

// Random returns up to count exercises sampled across all types.
func (s *Service) Random(ctx context.Context, count int) ([]Item, error) {
	reorder, mc, fb, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return sample(combine(reorder, mc, fb), count), nil
}

func (s *Service) loadAll(ctx context.Context) ([]ReorderExercise, []MultipleChoiceExercise, []FillBlankExercise, error) {
	reorder, err := s.Reorder(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	mc, err := s.MultipleChoice(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	fb, err := s.FillBlank(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return reorder, mc, fb, nil
}

func parseRefs(raw json.RawMessage) ([]Ref, error) {
	var refs []Ref
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("parse set refs: %w", err)
	}
	return refs, nil
}

// resolve expands refs into items. Refs pointing past the end of a type's
// listing are dropped rather than failed: content sets may reference
// exercises that were since removed.
func resolve(setID string, refs []Ref, reorder []ReorderExercise, mc []MultipleChoiceExercise, fb []FillBlankExercise) []Item {
	items := make([]Item, 0, len(refs))
	for i, ref := range refs {
		switch ref.Type {
		case TypeReorder:
			if ref.Index >= 0 && ref.Index < len(reorder) {
				items = append(items, Item{
					ID:   fmt.Sprintf("%s_reorder_%d", setID, i),
					Type: TypeReorder,
					Data: reorder[ref.Index],
				})
			}
		case TypeMultipleChoice:
			if ref.Index >= 0 && ref.Index < len(mc) {
				items = append(items, Item{
					ID:   fmt.Sprintf("%s_mc_%d", setID, i),
					Type: TypeMultipleChoice,
					Data: mc[ref.Index],
				})
			}
		case TypeFillBlank:
			if ref.Index >= 0 && ref.Index < len(fb) {
				items = append(items, Item{
					ID:   fmt.Sprintf("%s_fb_%d", setID, i),
					Type: TypeFillBlank,
					Data: fb[ref.Index],
				})
			}
		}
	}
	return items
}

func combine(reorder []ReorderExercise, mc []MultipleChoiceExercise, fb []FillBlankExercise) []Item {
	items := make([]Item, 0, len(reorder)+len(mc)+len(fb))
	for i, e := range reorder {
		items = append(items, Item{ID: fmt.Sprintf("reorder_%d", i), Type: TypeReorder, Data: e})
	}
	for i, e := range mc {
		items = append(items, Item{ID: fmt.Sprintf("multiple_choice_%d", i), Type: TypeMultipleChoice, Data: e})
	}
	for i, e := range fb {
		items = append(items, Item{ID: fmt.Sprintf("fill_blank_%d", i), Type: TypeFillBlank, Data: e})
	}
	return items
}

func sample(items []Item, count int) []Item {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	if count > len(items) {
		count = len(items)
	}
	if count < 0 {
		count = 0
	}
	return items[:count]
}
