package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"competence-exchange/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityTaken    = errors.New("activity no longer available")
)

type Activity struct {
	ID                 uuid.UUID
	Description        string
	RequesterID        uuid.UUID
	RequesterName      string
	CompetenceNeededID uuid.UUID
	CompetenceName     string
	SlotID             uuid.UUID
	SlotDate           time.Time
	SlotAvailable      bool
	VolunteerID        *uuid.UUID
}

type ActivityRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Activity, error)
	ListMatching(ctx context.Context, viewerID uuid.UUID) ([]Activity, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]Activity, error)
	AssignVolunteer(ctx context.Context, activityID uuid.UUID, volunteerID uuid.UUID) error
}

type PostgresActivityRepository struct {
	db database.DB
}

func NewPostgresActivityRepository(db database.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

const activitySelect = `
	SELECT a.id, a.description, a.requester_id, u.display_name,
	       a.competence_needed_id, c.name,
	       a.slot_id, s.slot_date, s.is_available, a.volunteer_id
	FROM activities a
	JOIN users u ON u.id = a.requester_id
	JOIN competences c ON c.id = a.competence_needed_id
	JOIN slots s ON s.id = a.slot_id`

func (r *PostgresActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (Activity, error) {
	row := r.db.QueryRow(ctx, activitySelect+` WHERE a.id = $1`, id)

	var a Activity
	err := row.Scan(
		&a.ID, &a.Description, &a.RequesterID, &a.RequesterName,
		&a.CompetenceNeededID, &a.CompetenceName,
		&a.SlotID, &a.SlotDate, &a.SlotAvailable, &a.VolunteerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrActivityNotFound
		}
		return Activity{}, err
	}
	return a, nil
}

// ListMatching returns help requests the viewer could act on: needed
// competence is in the viewer's profile, the viewer is not the
// requester, and the slot is still open unless the viewer is already
// the assigned volunteer. A claimed activity therefore stays visible
// to its volunteer and disappears for everyone else.
func (r *PostgresActivityRepository) ListMatching(ctx context.Context, viewerID uuid.UUID) ([]Activity, error) {
	rows, err := r.db.Query(ctx,
		activitySelect+`
		 WHERE s.purpose = $1
		   AND a.requester_id <> $2
		   AND a.competence_needed_id IN (
			SELECT pc.competence_id FROM profile_competences pc
			JOIN profiles p ON p.id = pc.profile_id
			WHERE p.user_id = $2
		   )
		   AND (s.is_available = TRUE OR a.volunteer_id = $2)
		 ORDER BY s.slot_date ASC, a.created_at ASC`,
		PurposeRequest, viewerID,
	)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

func (r *PostgresActivityRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]Activity, error) {
	rows, err := r.db.Query(ctx,
		activitySelect+`
		 WHERE a.requester_id = $1
		 ORDER BY s.slot_date DESC`,
		requesterID,
	)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

// AssignVolunteer performs the claim as one transaction: activity and
// slot rows are re-read under a write lock, the open state is
// re-verified, then both updates land together. A concurrent second
// claimant blocks on the lock and gets ErrActivityTaken.
func (r *PostgresActivityRepository) AssignVolunteer(ctx context.Context, activityID uuid.UUID, volunteerID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	var (
		slotID      uuid.UUID
		isAvailable bool
		currentVol  *uuid.UUID
	)
	row := tx.QueryRow(ctx,
		`SELECT s.id, s.is_available, a.volunteer_id
		 FROM activities a
		 JOIN slots s ON s.id = a.slot_id
		 WHERE a.id = $1
		 FOR UPDATE OF a, s`,
		activityID,
	)
	if err := row.Scan(&slotID, &isAvailable, &currentVol); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return ErrActivityNotFound
		}
		return err
	}

	if currentVol != nil || !isAvailable {
		return ErrActivityTaken
	}

	if _, err := tx.Exec(ctx, `UPDATE slots SET is_available = FALSE WHERE id = $1`, slotID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE activities SET volunteer_id = $1 WHERE id = $2`, volunteerID, activityID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func collectActivities(rows database.Rows) ([]Activity, error) {
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		err := rows.Scan(
			&a.ID, &a.Description, &a.RequesterID, &a.RequesterName,
			&a.CompetenceNeededID, &a.CompetenceName,
			&a.SlotID, &a.SlotDate, &a.SlotAvailable, &a.VolunteerID,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
