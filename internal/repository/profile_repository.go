package repository

import (
	"context"
	"database/sql"
	"errors"

	"competence-exchange/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUnknownCompetence = errors.New("unknown competence")
)

type ProfileRepository interface {
	FindCompetencesByUserID(ctx context.Context, userID uuid.UUID) ([]Competence, error)
	ReplaceCompetences(ctx context.Context, userID uuid.UUID, competenceIDs []uuid.UUID) error
	HasCompetence(ctx context.Context, userID uuid.UUID, competenceID uuid.UUID) (bool, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) FindCompetencesByUserID(ctx context.Context, userID uuid.UUID) ([]Competence, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.category_id, cat.name
		 FROM profile_competences pc
		 JOIN profiles p ON p.id = pc.profile_id
		 JOIN competences c ON c.id = pc.competence_id
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 WHERE p.user_id = $1
		 ORDER BY c.name ASC`,
		userID,
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

// ReplaceCompetences swaps the owned set atomically so readers never
// observe a half-updated profile.
func (r *PostgresProfileRepository) ReplaceCompetences(ctx context.Context, userID uuid.UUID, competenceIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	var profileID uuid.UUID
	row := tx.QueryRow(ctx, `SELECT id FROM profiles WHERE user_id = $1`, userID)
	if err := row.Scan(&profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM profile_competences WHERE profile_id = $1`, profileID); err != nil {
		return err
	}

	for _, cid := range competenceIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO profile_competences (profile_id, competence_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			profileID, cid,
		)
		if err != nil {
			// A competence deleted after any pre-check still has to
			// surface as a lookup failure, not a server error.
			if isForeignKeyViolation(err) {
				return ErrUnknownCompetence
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func (r *PostgresProfileRepository) HasCompetence(ctx context.Context, userID uuid.UUID, competenceID uuid.UUID) (bool, error) {
	var has bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM profile_competences pc
			JOIN profiles p ON p.id = pc.profile_id
			WHERE p.user_id = $1 AND pc.competence_id = $2
		 )`,
		userID, competenceID,
	)
	if err := row.Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}
