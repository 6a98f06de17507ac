package seeder

import (
	"context"
	"fmt"

	"competence-exchange/internal/database"
)

var defaultCategories = []string{
	"Home & Repair",
	"Education",
	"Technology",
	"Wellbeing",
}

var defaultCompetences = []struct {
	Name     string
	Category string
}{
	{Name: "Plumbing", Category: "Home & Repair"},
	{Name: "Electrical", Category: "Home & Repair"},
	{Name: "Carpentry", Category: "Home & Repair"},
	{Name: "Gardening", Category: "Home & Repair"},
	{Name: "Maths Tutoring", Category: "Education"},
	{Name: "Language Lessons", Category: "Education"},
	{Name: "Music Lessons", Category: "Education"},
	{Name: "Computer Help", Category: "Technology"},
	{Name: "Phone Setup", Category: "Technology"},
	{Name: "Cooking", Category: "Wellbeing"},
	{Name: "Childcare", Category: "Wellbeing"},
}

type CategoriesSeeder struct{}

func (CategoriesSeeder) Name() string { return "categories" }

func (CategoriesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "categories", "id", "name"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, name := range defaultCategories {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO categories (id, name) VALUES (gen_random_uuid(), $1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type CompetencesSeeder struct{}

func (CompetencesSeeder) Name() string { return "competences" }

func (CompetencesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "competences", "id", "name", "category_id"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, it := range defaultCompetences {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO competences (id, name, category_id)
			 VALUES (gen_random_uuid(), $1, (SELECT id FROM categories WHERE name = $2))
			 ON CONFLICT (name) DO NOTHING`,
			it.Name,
			it.Category,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
