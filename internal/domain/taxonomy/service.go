package taxonomy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Source loads category sets; *Repository is the production implementation.
type Source interface {
	GetCategorySet(ctx context.Context, userID uuid.UUID) (*CategorySet, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, name, color string) (uuid.UUID, error)
	CreateSubcategory(ctx context.Context, userID uuid.UUID, category, name string) error
}

// Service caches category sets per user and invalidates on mutation. Creation
// goes through the repository's RETURNING path, so a create followed by
// CategorySet always observes the new entry without a settle delay.
type Service struct {
	source Source
	logger *slog.Logger

	cacheMu sync.RWMutex
	cache   map[uuid.UUID]*CategorySet
}

// NewService creates a taxonomy service.
func NewService(source Source, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
		cache:  make(map[uuid.UUID]*CategorySet),
	}
}

// CategorySet returns the cached set for a user, loading it on first use.
func (s *Service) CategorySet(ctx context.Context, userID uuid.UUID) (*CategorySet, error) {
	s.cacheMu.RLock()
	if set, ok := s.cache[userID]; ok {
		s.cacheMu.RUnlock()
		return set, nil
	}
	s.cacheMu.RUnlock()

	set, err := s.source.GetCategorySet(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[userID] = set
	s.cacheMu.Unlock()

	return set, nil
}

// AddCategory creates a category and returns the refreshed set containing it.
func (s *Service) AddCategory(ctx context.Context, userID uuid.UUID, name, color string) (*CategorySet, error) {
	if _, err := s.source.CreateCategory(ctx, userID, name, color); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "user_id", userID, "name", name)
	return s.refresh(ctx, userID)
}

// AddSubcategory creates a subcategory and returns the refreshed set.
func (s *Service) AddSubcategory(ctx context.Context, userID uuid.UUID, category, name string) (*CategorySet, error) {
	if err := s.source.CreateSubcategory(ctx, userID, category, name); err != nil {
		return nil, err
	}
	s.logger.Info("subcategory created", "user_id", userID, "category", category, "name", name)
	return s.refresh(ctx, userID)
}

func (s *Service) refresh(ctx context.Context, userID uuid.UUID) (*CategorySet, error) {
	set, err := s.source.GetCategorySet(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[userID] = set
	s.cacheMu.Unlock()

	return set, nil
}
