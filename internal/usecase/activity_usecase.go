package usecase

import (
	"context"
	"errors"

	"competence-exchange/internal/domain/user"
	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

type ActivityItem struct {
	ID             uuid.UUID
	Description    string
	RequesterID    uuid.UUID
	RequesterName  string
	CompetenceID   uuid.UUID
	CompetenceName string
	SlotID         uuid.UUID
	SlotDate       string
	VolunteerID    *uuid.UUID
	Claimable      bool
}

type ContactParty struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Phone       *string
}

// ContactInfo is what the disclosure gate returns. Matched=false with
// a nil counterpart means the requester is asking before anyone has
// volunteered, which is allowed and distinct from forbidden.
type ContactInfo struct {
	ActivityID  uuid.UUID
	Matched     bool
	Counterpart *ContactParty
}

type ActivityUsecase interface {
	ListMatching(ctx context.Context, viewerID uuid.UUID) ([]ActivityItem, error)
	ListMine(ctx context.Context, viewerID uuid.UUID) ([]ActivityItem, error)
	Claim(ctx context.Context, viewerID uuid.UUID, activityID uuid.UUID) (ActivityItem, error)
	ContactInfo(ctx context.Context, viewerID uuid.UUID, activityID uuid.UUID) (ContactInfo, error)
}

type ActivityService struct {
	activities repository.ActivityRepository
	profiles   repository.ProfileRepository
	users      user.Repository
}

func NewActivityUsecase(activities repository.ActivityRepository, profiles repository.ProfileRepository, users user.Repository) *ActivityService {
	return &ActivityService{activities: activities, profiles: profiles, users: users}
}

// ListMatching returns open help requests in the viewer's competences,
// never the viewer's own, plus any request the viewer already
// volunteered for (no longer claimable, kept for status and contact).
func (u *ActivityService) ListMatching(ctx context.Context, viewerID uuid.UUID) ([]ActivityItem, error) {
	items, err := u.activities.ListMatching(ctx, viewerID)
	if err != nil {
		return nil, ErrInternal
	}
	return toActivityItems(items), nil
}

func (u *ActivityService) ListMine(ctx context.Context, viewerID uuid.UUID) ([]ActivityItem, error) {
	items, err := u.activities.ListByRequester(ctx, viewerID)
	if err != nil {
		return nil, ErrInternal
	}
	return toActivityItems(items), nil
}

// Claim volunteers the viewer for an open help request. The competence
// precondition is checked at claim time against the viewer's current
// profile; the availability re-check happens inside the repository's
// locked transaction, so a losing concurrent claimant gets ErrConflict.
func (u *ActivityService) Claim(ctx context.Context, viewerID uuid.UUID, activityID uuid.UUID) (ActivityItem, error) {
	act, err := u.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return ActivityItem{}, ErrNotFound
		}
		return ActivityItem{}, ErrInternal
	}

	if act.RequesterID == viewerID {
		return ActivityItem{}, ErrInvalidInput
	}

	has, err := u.profiles.HasCompetence(ctx, viewerID, act.CompetenceNeededID)
	if err != nil {
		return ActivityItem{}, ErrInternal
	}
	if !has {
		return ActivityItem{}, ErrForbidden
	}

	if err := u.activities.AssignVolunteer(ctx, activityID, viewerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrActivityTaken):
			return ActivityItem{}, ErrConflict
		case errors.Is(err, repository.ErrActivityNotFound):
			return ActivityItem{}, ErrNotFound
		default:
			return ActivityItem{}, ErrInternal
		}
	}

	claimed, err := u.activities.GetByID(ctx, activityID)
	if err != nil {
		return ActivityItem{}, ErrInternal
	}
	return toActivityItem(claimed), nil
}

// ContactInfo reveals the counterpart's contact identity to the two
// matched parties only.
func (u *ActivityService) ContactInfo(ctx context.Context, viewerID uuid.UUID, activityID uuid.UUID) (ContactInfo, error) {
	act, err := u.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return ContactInfo{}, ErrNotFound
		}
		return ContactInfo{}, ErrInternal
	}

	isRequester := act.RequesterID == viewerID
	isVolunteer := act.VolunteerID != nil && *act.VolunteerID == viewerID
	if !isRequester && !isVolunteer {
		return ContactInfo{}, ErrForbidden
	}

	if isRequester && act.VolunteerID == nil {
		return ContactInfo{ActivityID: act.ID, Matched: false}, nil
	}

	counterpartID := act.RequesterID
	if isRequester {
		counterpartID = *act.VolunteerID
	}

	counterpart, err := u.users.GetUserByID(ctx, counterpartID)
	if err != nil {
		return ContactInfo{}, ErrInternal
	}

	return ContactInfo{
		ActivityID: act.ID,
		Matched:    true,
		Counterpart: &ContactParty{
			ID:          counterpart.ID,
			DisplayName: counterpart.DisplayName,
			Email:       counterpart.Email,
			Phone:       counterpart.Phone,
		},
	}, nil
}

func toActivityItems(items []repository.Activity) []ActivityItem {
	out := make([]ActivityItem, 0, len(items))
	for _, it := range items {
		out = append(out, toActivityItem(it))
	}
	return out
}

func toActivityItem(a repository.Activity) ActivityItem {
	return ActivityItem{
		ID:             a.ID,
		Description:    a.Description,
		RequesterID:    a.RequesterID,
		RequesterName:  a.RequesterName,
		CompetenceID:   a.CompetenceNeededID,
		CompetenceName: a.CompetenceName,
		SlotID:         a.SlotID,
		SlotDate:       a.SlotDate.Format("2006-01-02"),
		VolunteerID:    a.VolunteerID,
		Claimable:      a.SlotAvailable && a.VolunteerID == nil,
	}
}
