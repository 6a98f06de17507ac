package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

func TestGroupByCategory(t *testing.T) {
	homeID := uuid.New()
	eduID := uuid.New()
	home := "Home & Repair"
	edu := "Education"

	items := []repository.Competence{
		{ID: uuid.New(), Name: "Plumbing", CategoryID: &homeID, CategoryName: &home},
		{ID: uuid.New(), Name: "Math tutoring", CategoryID: &eduID, CategoryName: &edu},
		{ID: uuid.New(), Name: "Carpentry", CategoryID: &homeID, CategoryName: &home},
		{ID: uuid.New(), Name: "Juggling"},
	}

	groups := groupByCategory(items)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Name != home || len(groups[0].Competences) != 2 {
		t.Fatalf("expected %s first with 2 competences, got %+v", home, groups[0])
	}
	if groups[1].Name != edu || len(groups[1].Competences) != 1 {
		t.Fatalf("expected %s second, got %+v", edu, groups[1])
	}
	if groups[2].Name != "Other" || groups[2].ID != nil {
		t.Fatalf("expected trailing Other group, got %+v", groups[2])
	}
	if groups[2].Competences[0].Name != "Juggling" {
		t.Fatalf("uncategorized competence missing from Other")
	}
}

func TestGroupByCategory_Empty(t *testing.T) {
	groups := groupByCategory(nil)
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestCompetence_ListCatalog_CacheHit(t *testing.T) {
	catID := uuid.New()
	cached := []CategoryGroup{{ID: &catID, Name: "Technology", Competences: []CompetenceItem{{ID: uuid.New(), Name: "PC troubleshooting"}}}}

	cache := newFakeFeedCache()
	if err := cache.SetJSON(context.Background(), catalogCacheKey, cached, time.Minute); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	uc := NewCompetenceUsecase(&mockCompetenceRepo{err: errors.New("db must not be hit")}, cache)

	groups, err := uc.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Technology" {
		t.Fatalf("expected cached catalog, got %+v", groups)
	}
}

func TestCompetence_ListCategories(t *testing.T) {
	repo := &mockCompetenceRepo{categories: []repository.Category{
		{ID: uuid.New(), Name: "Home & Repair"},
		{ID: uuid.New(), Name: "Education"},
	}}
	uc := NewCompetenceUsecase(repo, nil)

	items, err := uc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(items))
	}
	if items[0].Name != "Home & Repair" || items[1].Name != "Education" {
		t.Fatalf("unexpected categories: %+v", items)
	}
}

func TestCompetence_ListCategories_RepoError(t *testing.T) {
	uc := NewCompetenceUsecase(&mockCompetenceRepo{err: errors.New("boom")}, nil)

	if _, err := uc.ListCategories(context.Background()); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestCompetence_ListCatalog_PopulatesCache(t *testing.T) {
	cache := newFakeFeedCache()
	repo := &mockCompetenceRepo{items: []repository.Competence{{ID: uuid.New(), Name: "First aid"}}}
	uc := NewCompetenceUsecase(repo, cache)

	groups, err := uc.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if _, ok := cache.entries[catalogCacheKey]; !ok {
		t.Fatalf("expected catalog to be cached")
	}
}
