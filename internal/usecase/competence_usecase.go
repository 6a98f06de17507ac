package usecase

import (
	"context"
	"time"

	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

const (
	catalogCacheKey = "catalog:competences"
	catalogCacheTTL = 5 * time.Minute
)

type CompetenceItem struct {
	ID   uuid.UUID
	Name string
}

type CategoryGroup struct {
	ID          *uuid.UUID
	Name        string
	Competences []CompetenceItem
}

type CategoryItem struct {
	ID   uuid.UUID
	Name string
}

type CompetenceUsecase interface {
	ListCatalog(ctx context.Context) ([]CategoryGroup, error)
	ListCategories(ctx context.Context) ([]CategoryItem, error)
}

type Competence struct {
	repo  repository.CompetenceRepository
	cache FeedCache
}

func NewCompetenceUsecase(repo repository.CompetenceRepository, cache FeedCache) *Competence {
	return &Competence{repo: repo, cache: cache}
}

// ListCatalog returns every competence grouped under its category,
// uncategorized ones in a trailing "Other" group.
func (u *Competence) ListCatalog(ctx context.Context) ([]CategoryGroup, error) {
	if u.cache != nil {
		var cached []CategoryGroup
		if hit, err := u.cache.GetJSON(ctx, catalogCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	items, err := u.repo.ListCompetences(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	groups := groupByCategory(items)

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, catalogCacheKey, groups, catalogCacheTTL)
	}
	return groups, nil
}

// ListCategories is the bare category list, used to build selection
// forms without pulling the whole competence catalog.
func (u *Competence) ListCategories(ctx context.Context) ([]CategoryItem, error) {
	cats, err := u.repo.ListCategories(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	items := make([]CategoryItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, CategoryItem{ID: c.ID, Name: c.Name})
	}
	return items, nil
}

func groupByCategory(items []repository.Competence) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := map[uuid.UUID]int{}
	var other []CompetenceItem

	for _, it := range items {
		ci := CompetenceItem{ID: it.ID, Name: it.Name}
		if it.CategoryID == nil {
			other = append(other, ci)
			continue
		}
		i, ok := index[*it.CategoryID]
		if !ok {
			name := ""
			if it.CategoryName != nil {
				name = *it.CategoryName
			}
			groups = append(groups, CategoryGroup{ID: it.CategoryID, Name: name})
			i = len(groups) - 1
			index[*it.CategoryID] = i
		}
		groups[i].Competences = append(groups[i].Competences, ci)
	}

	if len(other) > 0 {
		groups = append(groups, CategoryGroup{Name: "Other", Competences: other})
	}
	return groups
}
