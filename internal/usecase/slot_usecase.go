package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

const (
	aidFeedCacheKeyPrefix = "slots:feed:aid"
	aidFeedCacheTTL       = time.Minute
)

type SlotItem struct {
	ID             uuid.UUID
	Date           string
	OwnerID        uuid.UUID
	OwnerName      string
	CompetenceID   uuid.UUID
	CompetenceName string
	IsAvailable    bool
	Purpose        string
}

type CreateSlotInput struct {
	Date         time.Time
	CompetenceID uuid.UUID
	Purpose      string
	Description  string
}

type CreatedSlot struct {
	SlotID     uuid.UUID
	ActivityID *uuid.UUID
}

type SlotUsecase interface {
	CreateSlot(ctx context.Context, userID uuid.UUID, in CreateSlotInput) (CreatedSlot, error)
	ListPublicFeed(ctx context.Context) ([]SlotItem, error)
	ListAvailableHelp(ctx context.Context, viewerID uuid.UUID) ([]SlotItem, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]SlotItem, error)
	DeleteSlot(ctx context.Context, userID uuid.UUID, slotID uuid.UUID) error
}

type SlotService struct {
	slots       repository.SlotRepository
	competences repository.CompetenceRepository
	cache       FeedCache

	now func() time.Time
}

func NewSlotUsecase(slots repository.SlotRepository, competences repository.CompetenceRepository, cache FeedCache) *SlotService {
	return &SlotService{slots: slots, competences: competences, cache: cache, now: time.Now}
}

// CreateSlot publishes an availability. A request slot must carry a
// description and gets its paired activity created in the same
// transaction; an aid slot never creates one.
func (u *SlotService) CreateSlot(ctx context.Context, userID uuid.UUID, in CreateSlotInput) (CreatedSlot, error) {
	if in.Date.IsZero() || in.CompetenceID == uuid.Nil {
		return CreatedSlot{}, ErrInvalidInput
	}
	if in.Purpose != repository.PurposeAid && in.Purpose != repository.PurposeRequest {
		return CreatedSlot{}, ErrInvalidInput
	}

	description := strings.TrimSpace(in.Description)
	if in.Purpose == repository.PurposeRequest && description == "" {
		return CreatedSlot{}, ErrInvalidInput
	}

	exists, err := u.competences.CompetenceExistsByID(ctx, in.CompetenceID)
	if err != nil {
		return CreatedSlot{}, ErrInternal
	}
	if !exists {
		return CreatedSlot{}, ErrNotFound
	}

	s := repository.Slot{
		Date:         in.Date,
		UserID:       userID,
		CompetenceID: in.CompetenceID,
		Purpose:      in.Purpose,
	}

	var created CreatedSlot
	if in.Purpose == repository.PurposeRequest {
		slotID, activityID, err := u.slots.CreateSlotWithActivity(ctx, s, description)
		if err != nil {
			return CreatedSlot{}, ErrInternal
		}
		created = CreatedSlot{SlotID: slotID, ActivityID: &activityID}
	} else {
		slotID, err := u.slots.CreateSlot(ctx, s)
		if err != nil {
			return CreatedSlot{}, ErrInternal
		}
		created = CreatedSlot{SlotID: slotID}
	}

	u.invalidateFeed(ctx)
	return created, nil
}

// ListPublicFeed is the anonymous feed of open aid offers from today
// onward.
func (u *SlotService) ListPublicFeed(ctx context.Context) ([]SlotItem, error) {
	key := u.feedCacheKey()
	if u.cache != nil {
		var cached []SlotItem
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	slots, err := u.slots.ListAvailableAid(ctx, u.today())
	if err != nil {
		return nil, ErrInternal
	}
	items := toSlotItems(slots)

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, items, aidFeedCacheTTL)
	}
	return items, nil
}

// ListAvailableHelp shows aid offers for competences the viewer does
// not already possess, excluding the viewer's own slots.
func (u *SlotService) ListAvailableHelp(ctx context.Context, viewerID uuid.UUID) ([]SlotItem, error) {
	slots, err := u.slots.ListAvailableAidForViewer(ctx, viewerID, u.today())
	if err != nil {
		return nil, ErrInternal
	}
	return toSlotItems(slots), nil
}

func (u *SlotService) ListMine(ctx context.Context, userID uuid.UUID) ([]SlotItem, error) {
	slots, err := u.slots.ListByOwner(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return toSlotItems(slots), nil
}

func (u *SlotService) DeleteSlot(ctx context.Context, userID uuid.UUID, slotID uuid.UUID) error {
	if err := u.slots.DeleteOwned(ctx, slotID, userID); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	u.invalidateFeed(ctx)
	return nil
}

func (u *SlotService) today() time.Time {
	now := u.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// feedCacheKey scopes the cached feed to the current UTC day, so an
// entry written just before midnight cannot keep serving yesterday's
// slots once the date boundary passes.
func (u *SlotService) feedCacheKey() string {
	return aidFeedCacheKeyPrefix + ":" + u.today().Format("2006-01-02")
}

func (u *SlotService) invalidateFeed(ctx context.Context) {
	if u.cache != nil {
		_ = u.cache.Delete(ctx, u.feedCacheKey())
	}
}

func toSlotItems(slots []repository.Slot) []SlotItem {
	out := make([]SlotItem, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotItem{
			ID:             s.ID,
			Date:           s.Date.Format("2006-01-02"),
			OwnerID:        s.UserID,
			OwnerName:      s.UserDisplayName,
			CompetenceID:   s.CompetenceID,
			CompetenceName: s.CompetenceName,
			IsAvailable:    s.IsAvailable,
			Purpose:        s.Purpose,
		})
	}
	return out
}
