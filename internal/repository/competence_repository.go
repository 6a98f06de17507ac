package repository

import (
	"context"

	"competence-exchange/internal/database"

	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID
	Name string
}

type Competence struct {
	ID           uuid.UUID
	Name         string
	CategoryID   *uuid.UUID
	CategoryName *string
}

type CompetenceRepository interface {
	ListCompetences(ctx context.Context) ([]Competence, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CompetenceExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	AllCompetencesExist(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type PostgresCompetenceRepository struct {
	db database.DB
}

func NewPostgresCompetenceRepository(db database.DB) *PostgresCompetenceRepository {
	return &PostgresCompetenceRepository{db: db}
}

func (r *PostgresCompetenceRepository) ListCompetences(ctx context.Context) ([]Competence, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.category_id, cat.name
		 FROM competences c
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 ORDER BY cat.name ASC NULLS LAST, c.name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Competence, 0)
	for rows.Next() {
		var c Competence
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryID, &c.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCompetenceRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCompetenceRepository) CompetenceExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM competences WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresCompetenceRepository) AllCompetencesExist(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM competences WHERE id = ANY($1)`, ids)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count == len(ids), nil
}
