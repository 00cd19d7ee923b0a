package services

import (
	"context"
	"time"

	"nextcash/internal/cache"
	"nextcash/internal/core"
	"nextcash/internal/log"
	"nextcash/internal/ports"
)

const categoriesKey = "categories"

// CategoryService serves the global category list.
type CategoryService struct {
	reader ports.CategoryReader
	logger *log.Logger
	cache  cache.Cache[[]core.Category]
}

func NewCategoryService(reader ports.CategoryReader, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.Discard()
	}
	return &CategoryService{reader: reader, logger: logger.WithComponent(log.ComponentCategory)}
}

// WithCache keeps the category list in memory for ttl. Categories only
// change through migrations, so a restart is the only invalidation.
func (s *CategoryService) WithCache(ttl time.Duration) *CategoryService {
	if ttl > 0 {
		s.cache = cache.NewLRUCache[[]core.Category](1, ttl)
	}
	return s
}

// List returns every category ordered by type then name.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	if s.cache != nil {
		if cats, ok := s.cache.Get(categoriesKey); ok {
			return cats, nil
		}
	}
	cats, err := s.reader.ListCategories(ctx)
	if err != nil {
		s.logger.LogAction(ctx, log.OpList, err, false, log.NewFields())
		return nil, core.Internal(err)
	}
	if s.cache != nil {
		s.cache.Set(categoriesKey, cats)
	}
	return cats, nil
}

// ByType returns the categories of type t. An unknown type yields none.
func (s *CategoryService) ByType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByType(cats, t), nil
}
