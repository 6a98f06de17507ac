package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"competence-exchange/internal/domain/user"
	"competence-exchange/internal/repository"

	"github.com/google/uuid"
)

type mockActivityRepo struct {
	act       repository.Activity
	getErr    error
	listed    []repository.Activity
	listErr   error
	assignErr error

	assignCalls int
}

func (m *mockActivityRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Activity, error) {
	if m.getErr != nil {
		return repository.Activity{}, m.getErr
	}
	if m.act.ID != id {
		return repository.Activity{}, repository.ErrActivityNotFound
	}
	return m.act, nil
}

func (m *mockActivityRepo) ListMatching(context.Context, uuid.UUID) ([]repository.Activity, error) {
	return m.listed, m.listErr
}

func (m *mockActivityRepo) ListByRequester(context.Context, uuid.UUID) ([]repository.Activity, error) {
	return m.listed, m.listErr
}

func (m *mockActivityRepo) AssignVolunteer(_ context.Context, _ uuid.UUID, volunteerID uuid.UUID) error {
	m.assignCalls++
	if m.assignErr != nil {
		return m.assignErr
	}
	v := volunteerID
	m.act.VolunteerID = &v
	m.act.SlotAvailable = false
	return nil
}

type mockProfileRepo struct {
	has         bool
	hasErr      error
	competences []repository.Competence
	err         error
	replaceErr  error

	replaced []uuid.UUID
}

func (m *mockProfileRepo) FindCompetencesByUserID(context.Context, uuid.UUID) ([]repository.Competence, error) {
	return m.competences, m.err
}

func (m *mockProfileRepo) ReplaceCompetences(_ context.Context, _ uuid.UUID, competenceIDs []uuid.UUID) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = competenceIDs
	return m.err
}

func (m *mockProfileRepo) HasCompetence(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return m.has, m.hasErr
}

type mockUserRepo struct {
	users map[uuid.UUID]user.User
}

func (m *mockUserRepo) CreateUser(context.Context, user.User) error { return nil }

func (m *mockUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetUserByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (m *mockUserRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func openRequest(requesterID uuid.UUID) repository.Activity {
	return repository.Activity{
		ID:                 uuid.New(),
		Description:        "need help fixing a dripping tap",
		RequesterID:        requesterID,
		RequesterName:      "Alice",
		CompetenceNeededID: uuid.New(),
		CompetenceName:     "Plumbing",
		SlotID:             uuid.New(),
		SlotDate:           time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		SlotAvailable:      true,
	}
}

func TestActivityService_Claim_OwnRequest(t *testing.T) {
	requesterID := uuid.New()
	act := openRequest(requesterID)
	uc := NewActivityUsecase(&mockActivityRepo{act: act}, &mockProfileRepo{has: true}, &mockUserRepo{})

	if _, err := uc.Claim(context.Background(), requesterID, act.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestActivityService_Claim_WithoutCompetence(t *testing.T) {
	act := openRequest(uuid.New())
	repo := &mockActivityRepo{act: act}
	uc := NewActivityUsecase(repo, &mockProfileRepo{has: false}, &mockUserRepo{})

	if _, err := uc.Claim(context.Background(), uuid.New(), act.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.assignCalls != 0 {
		t.Fatalf("must not assign without the competence")
	}
}

func TestActivityService_Claim_AlreadyTaken(t *testing.T) {
	act := openRequest(uuid.New())
	repo := &mockActivityRepo{act: act, assignErr: repository.ErrActivityTaken}
	uc := NewActivityUsecase(repo, &mockProfileRepo{has: true}, &mockUserRepo{})

	if _, err := uc.Claim(context.Background(), uuid.New(), act.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestActivityService_Claim_NotFound(t *testing.T) {
	uc := NewActivityUsecase(&mockActivityRepo{act: openRequest(uuid.New())}, &mockProfileRepo{has: true}, &mockUserRepo{})

	if _, err := uc.Claim(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityService_Claim_Success(t *testing.T) {
	act := openRequest(uuid.New())
	repo := &mockActivityRepo{act: act}
	uc := NewActivityUsecase(repo, &mockProfileRepo{has: true}, &mockUserRepo{})

	volunteerID := uuid.New()
	claimed, err := uc.Claim(context.Background(), volunteerID, act.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claimed.VolunteerID == nil || *claimed.VolunteerID != volunteerID {
		t.Fatalf("expected volunteer to be set")
	}
	if claimed.Claimable {
		t.Fatalf("claimed activity must not stay claimable")
	}
	if repo.assignCalls != 1 {
		t.Fatalf("expected a single assign, got %d", repo.assignCalls)
	}
}

func TestActivityService_ContactInfo_Stranger(t *testing.T) {
	act := openRequest(uuid.New())
	uc := NewActivityUsecase(&mockActivityRepo{act: act}, &mockProfileRepo{}, &mockUserRepo{})

	if _, err := uc.ContactInfo(context.Background(), uuid.New(), act.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestActivityService_ContactInfo_RequesterBeforeMatch(t *testing.T) {
	requesterID := uuid.New()
	act := openRequest(requesterID)
	uc := NewActivityUsecase(&mockActivityRepo{act: act}, &mockProfileRepo{}, &mockUserRepo{})

	info, err := uc.ContactInfo(context.Background(), requesterID, act.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if info.Matched {
		t.Fatalf("expected matched=false before a volunteer claims")
	}
	if info.Counterpart != nil {
		t.Fatalf("expected no counterpart before a volunteer claims")
	}
}

func TestActivityService_ContactInfo_BothParties(t *testing.T) {
	requesterID := uuid.New()
	volunteerID := uuid.New()

	act := openRequest(requesterID)
	act.VolunteerID = &volunteerID
	act.SlotAvailable = false

	phone := "+44 20 7946 0000"
	users := &mockUserRepo{users: map[uuid.UUID]user.User{
		requesterID: {ID: requesterID, Email: "alice@example.com", DisplayName: "Alice", Phone: &phone},
		volunteerID: {ID: volunteerID, Email: "bob@example.com", DisplayName: "Bob"},
	}}
	uc := NewActivityUsecase(&mockActivityRepo{act: act}, &mockProfileRepo{}, users)

	forRequester, err := uc.ContactInfo(context.Background(), requesterID, act.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !forRequester.Matched || forRequester.Counterpart == nil {
		t.Fatalf("expected matched counterpart for requester")
	}
	if forRequester.Counterpart.Email != "bob@example.com" {
		t.Fatalf("requester must see the volunteer, got %s", forRequester.Counterpart.Email)
	}

	forVolunteer, err := uc.ContactInfo(context.Background(), volunteerID, act.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !forVolunteer.Matched || forVolunteer.Counterpart == nil {
		t.Fatalf("expected matched counterpart for volunteer")
	}
	if forVolunteer.Counterpart.Email != "alice@example.com" {
		t.Fatalf("volunteer must see the requester, got %s", forVolunteer.Counterpart.Email)
	}
	if forVolunteer.Counterpart.Phone == nil || *forVolunteer.Counterpart.Phone != phone {
		t.Fatalf("expected requester phone to be disclosed")
	}
}

func TestActivityService_ListMatching_Claimable(t *testing.T) {
	open := openRequest(uuid.New())
	takenBy := uuid.New()
	taken := openRequest(uuid.New())
	taken.VolunteerID = &takenBy
	taken.SlotAvailable = false

	uc := NewActivityUsecase(&mockActivityRepo{listed: []repository.Activity{open, taken}}, &mockProfileRepo{}, &mockUserRepo{})

	items, err := uc.ListMatching(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !items[0].Claimable {
		t.Fatalf("open request must be claimable")
	}
	if items[1].Claimable {
		t.Fatalf("taken request must not be claimable")
	}
	if items[0].SlotDate != "2026-09-14" {
		t.Fatalf("unexpected slot date: %s", items[0].SlotDate)
	}
}
