package repository

import (
	"context"
	"errors"
	"time"

	"competence-exchange/internal/database"

	"github.com/google/uuid"
)

const (
	PurposeAid     = "aid"
	PurposeRequest = "request"
)

var ErrSlotNotFound = errors.New("slot not found")

type Slot struct {
	ID              uuid.UUID
	Date            time.Time
	UserID          uuid.UUID
	UserDisplayName string
	CompetenceID    uuid.UUID
	CompetenceName  string
	IsAvailable     bool
	Purpose         string
}

type SlotRepository interface {
	CreateSlot(ctx context.Context, s Slot) (uuid.UUID, error)
	CreateSlotWithActivity(ctx context.Context, s Slot, description string) (uuid.UUID, uuid.UUID, error)
	ListAvailableAid(ctx context.Context, from time.Time) ([]Slot, error)
	ListAvailableAidForViewer(ctx context.Context, viewerID uuid.UUID, from time.Time) ([]Slot, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Slot, error)
	DeleteOwned(ctx context.Context, slotID uuid.UUID, userID uuid.UUID) error
}

type PostgresSlotRepository struct {
	db database.DB
}

func NewPostgresSlotRepository(db database.DB) *PostgresSlotRepository {
	return &PostgresSlotRepository{db: db}
}

func (r *PostgresSlotRepository) CreateSlot(ctx context.Context, s Slot) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO slots (id, slot_date, user_id, competence_id, is_available, purpose)
		 VALUES ($1, $2, $3, $4, TRUE, $5)`,
		id, s.Date, s.UserID, s.CompetenceID, s.Purpose,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// CreateSlotWithActivity inserts a request slot and its paired
// activity in one transaction. The activity's needed competence is
// copied from the slot, so the two can never disagree.
func (r *PostgresSlotRepository) CreateSlotWithActivity(ctx context.Context, s Slot, description string) (uuid.UUID, uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	slotID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO slots (id, slot_date, user_id, competence_id, is_available, purpose)
		 VALUES ($1, $2, $3, $4, TRUE, $5)`,
		slotID, s.Date, s.UserID, s.CompetenceID, PurposeRequest,
	)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	activityID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO activities (id, description, requester_id, competence_needed_id, slot_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		activityID, description, s.UserID, s.CompetenceID, slotID,
	)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return slotID, activityID, nil
}

// ListAvailableAid is the public feed: open aid offers dated today or
// later. Past-dated slots never show here.
func (r *PostgresSlotRepository) ListAvailableAid(ctx context.Context, from time.Time) ([]Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.slot_date, s.user_id, u.display_name, s.competence_id, c.name, s.is_available, s.purpose
		 FROM slots s
		 JOIN users u ON u.id = s.user_id
		 JOIN competences c ON c.id = s.competence_id
		 WHERE s.purpose = $1 AND s.is_available = TRUE AND s.slot_date >= $2
		 ORDER BY s.slot_date ASC, c.name ASC`,
		PurposeAid, from,
	)
	if err != nil {
		return nil, err
	}
	return collectSlots(rows)
}

// ListAvailableAidForViewer additionally hides slots the viewer owns
// and slots for competences the viewer already possesses.
func (r *PostgresSlotRepository) ListAvailableAidForViewer(ctx context.Context, viewerID uuid.UUID, from time.Time) ([]Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.slot_date, s.user_id, u.display_name, s.competence_id, c.name, s.is_available, s.purpose
		 FROM slots s
		 JOIN users u ON u.id = s.user_id
		 JOIN competences c ON c.id = s.competence_id
		 WHERE s.purpose = $1 AND s.is_available = TRUE AND s.slot_date >= $2
		   AND s.user_id <> $3
		   AND s.competence_id NOT IN (
			SELECT pc.competence_id FROM profile_competences pc
			JOIN profiles p ON p.id = pc.profile_id
			WHERE p.user_id = $3
		   )
		 ORDER BY s.slot_date ASC, c.name ASC`,
		PurposeAid, from, viewerID,
	)
	if err != nil {
		return nil, err
	}
	return collectSlots(rows)
}

// ListByOwner returns the owner's full slot history, past dates and
// unavailable slots included.
func (r *PostgresSlotRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Slot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.slot_date, s.user_id, u.display_name, s.competence_id, c.name, s.is_available, s.purpose
		 FROM slots s
		 JOIN users u ON u.id = s.user_id
		 JOIN competences c ON c.id = s.competence_id
		 WHERE s.user_id = $1
		 ORDER BY s.slot_date DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectSlots(rows)
}

// DeleteOwned removes a slot only when the caller owns it. Zero rows
// affected reads as not-found, so non-owners cannot probe existence.
func (r *PostgresSlotRepository) DeleteOwned(ctx context.Context, slotID uuid.UUID, userID uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM slots WHERE id = $1 AND user_id = $2`, slotID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func collectSlots(rows database.Rows) ([]Slot, error) {
	defer rows.Close()

	out := make([]Slot, 0)
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.Date, &s.UserID, &s.UserDisplayName, &s.CompetenceID, &s.CompetenceName, &s.IsAvailable, &s.Purpose); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
