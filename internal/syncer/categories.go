package syncer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"planner/internal/model"
	"planner/internal/state"
)

func (s *Syncer) CreateCategory(ctx context.Context, name, color string) (model.Category, error) {
	name, err := model.ValidateCategoryName(name)
	if err != nil {
		return model.Category{}, err
	}

	category, err := Attempt(ctx, "create category", nil,
		func(ctx context.Context) (model.Category, error) {
			created, err := s.remote.CreateCategories(ctx, []model.Category{{
				UserID: s.remote.UserID(),
				Name:   name,
				Color:  color,
			}})
			if err != nil {
				return model.Category{}, err
			}
			return created[0], nil
		},
		s.store.ApplyCategoryAdded,
	)
	if err != nil {
		s.notify("create category", "Failed to create category", err)
		return model.Category{}, err
	}
	return category, nil
}

// DeleteCategory removes the category; tasks that used it become
// uncategorized.
func (s *Syncer) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if !s.knownCategory(id) {
		return state.ErrCategoryNotFound
	}
	if err := s.remote.DeleteCategory(ctx, id); err != nil {
		s.notify("delete category", "Failed to delete category", err)
		return fmt.Errorf("delete category: %w", err)
	}
	return s.store.ApplyCategoryRemoved(id)
}
