package usecase

import (
	"context"
	"errors"

	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

type ProfileUsecase interface {
	ListOwnedCompetences(ctx context.Context, userID uuid.UUID) ([]CompetenceItem, error)
	SetOwnedCompetences(ctx context.Context, userID uuid.UUID, competenceIDs []uuid.UUID) ([]CompetenceItem, error)
}

type Profile struct {
	profiles    repository.ProfileRepository
	competences repository.CompetenceRepository
}

func NewProfileUsecase(profiles repository.ProfileRepository, competences repository.CompetenceRepository) *Profile {
	return &Profile{profiles: profiles, competences: competences}
}

func (u *Profile) ListOwnedCompetences(ctx context.Context, userID uuid.UUID) ([]CompetenceItem, error) {
	items, err := u.profiles.FindCompetencesByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return toCompetenceItems(items), nil
}

// SetOwnedCompetences replaces the whole owned set in one shot, the
// way the selection form submits it.
func (u *Profile) SetOwnedCompetences(ctx context.Context, userID uuid.UUID, competenceIDs []uuid.UUID) ([]CompetenceItem, error) {
	ids := dedupeIDs(competenceIDs)

	ok, err := u.competences.AllCompetencesExist(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrNotFound
	}

	if err := u.profiles.ReplaceCompetences(ctx, userID, ids); err != nil {
		if errors.Is(err, repository.ErrUnknownCompetence) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}

	items, err := u.profiles.FindCompetencesByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return toCompetenceItems(items), nil
}

func toCompetenceItems(items []repository.Competence) []CompetenceItem {
	out := make([]CompetenceItem, 0, len(items))
	for _, it := range items {
		out = append(out, CompetenceItem{ID: it.ID, Name: it.Name})
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
