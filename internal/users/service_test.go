package users

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
)

type stubUsersRepo struct {
	byExternalID map[string]*models.User
	created      []*models.User
	updated      *models.User
	createErr    error
	searchResult []models.User
	searchParams SearchQuery
}

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.created = append(s.created, user)
	if s.byExternalID == nil {
		s.byExternalID = make(map[string]*models.User)
	}
	s.byExternalID[user.ExternalID] = user
	return nil
}

func (s *stubUsersRepo) Update(ctx context.Context, user *models.User) error {
	s.updated = user
	return nil
}

func (s *stubUsersRepo) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.byExternalID[externalID], nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byExternalID {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (s *stubUsersRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var found []models.User
	for _, id := range ids {
		if user, err := s.FindByID(ctx, id); err == nil && user != nil {
			found = append(found, *user)
		}
	}
	return found, nil
}

func (s *stubUsersRepo) Search(ctx context.Context, params SearchQuery) ([]models.User, error) {
	s.searchParams = params
	return s.searchResult, nil
}

func validProfileParams(externalID string) ProfileParams {
	return ProfileParams{
		ExternalID:        externalID,
		Name:              "Ada Learner",
		Email:             "ada@example.com",
		ExperienceLevel:   string(enums.ExperienceLevel3To6),
		PreparednessLevel: string(enums.PreparednessBeginner),
	}
}

func TestUpsertProfileCreates(t *testing.T) {
	repo := &stubUsersRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	id, err := svc.UpsertProfile(context.Background(), validProfileParams("ext-1"))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected a profile id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create got %d", len(repo.created))
	}
	if !repo.created[0].IsActive {
		t.Fatal("expected new profile to be active")
	}
}

func TestUpsertProfileIdempotent(t *testing.T) {
	existing := &models.User{ID: uuid.New(), ExternalID: "ext-1", Name: "Original"}
	repo := &stubUsersRepo{byExternalID: map[string]*models.User{"ext-1": existing}}
	svc, _ := NewService(ServiceParams{Repo: repo})

	params := validProfileParams("ext-1")
	params.Name = "Changed Name"
	id, err := svc.UpsertProfile(context.Background(), params)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if id != existing.ID {
		t.Fatalf("expected existing id %s got %s", existing.ID, id)
	}
	if len(repo.created) != 0 {
		t.Fatal("expected no create on repeated upsert")
	}
	if existing.Name != "Original" {
		t.Fatalf("expected stored attributes untouched, name is %q", existing.Name)
	}
}

func TestUpsertProfileInvalidLevel(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubUsersRepo{}})

	params := validProfileParams("ext-1")
	params.ExperienceLevel = "10-20"
	_, err := svc.UpsertProfile(context.Background(), params)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubUsersRepo{}})

	_, err := svc.UpdateProfile(context.Background(), validProfileParams("ext-missing"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error got %v", err)
	}
}

func TestUpdateProfileOverwrites(t *testing.T) {
	existing := &models.User{ID: uuid.New(), ExternalID: "ext-1", Name: "Original", IsActive: true}
	repo := &stubUsersRepo{byExternalID: map[string]*models.User{"ext-1": existing}}
	svc, _ := NewService(ServiceParams{Repo: repo})

	params := validProfileParams("ext-1")
	params.Name = "Updated"
	phone := "+1 555 0100"
	params.Phone = &phone
	id, err := svc.UpdateProfile(context.Background(), params)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if id != existing.ID {
		t.Fatalf("expected id %s got %s", existing.ID, id)
	}
	if repo.updated == nil || repo.updated.Name != "Updated" {
		t.Fatal("expected update with new name")
	}
	if repo.updated.Phone == nil || *repo.updated.Phone != phone {
		t.Fatal("expected phone to be stored")
	}
}

func TestSearchProjectionHidesContact(t *testing.T) {
	phone := "+1 555 0100"
	requester := &models.User{ID: uuid.New(), ExternalID: "ext-self"}
	repo := &stubUsersRepo{
		byExternalID: map[string]*models.User{"ext-self": requester},
		searchResult: []models.User{{
			ID:                uuid.New(),
			Name:              "Grace",
			Email:             "grace@example.com",
			Phone:             &phone,
			ExperienceLevel:   enums.ExperienceLevel6To9,
			PreparednessLevel: enums.PreparednessAdvanced,
			LinkedinURL:       "https://linkedin.com/in/grace",
		}},
	}
	svc, _ := NewService(ServiceParams{Repo: repo})

	candidates, err := svc.Search(context.Background(), SearchParams{RequesterExternalID: "ext-self"})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate got %d", len(candidates))
	}
	candidate := candidates[0]
	if candidate.Name != "Grace" || candidate.LinkedinURL == "" {
		t.Fatalf("unexpected projection %+v", candidate)
	}
	if !repo.searchParams.ActiveOnly {
		t.Fatal("expected search to be limited to active learners")
	}
}

func TestSearchExcludesRequesterProfile(t *testing.T) {
	requester := &models.User{ID: uuid.New(), ExternalID: "ext-self"}
	repo := &stubUsersRepo{byExternalID: map[string]*models.User{"ext-self": requester}}
	svc, _ := NewService(ServiceParams{Repo: repo})

	_, err := svc.Search(context.Background(), SearchParams{RequesterExternalID: "ext-self"})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.searchParams.ExcludeID != requester.ID {
		t.Fatalf("expected requester %s excluded got %s", requester.ID, repo.searchParams.ExcludeID)
	}
}

func TestSearchUnknownRequesterSeesNothing(t *testing.T) {
	repo := &stubUsersRepo{
		searchResult: []models.User{
			{ID: uuid.New(), Name: "Grace", IsActive: true},
			{ID: uuid.New(), Name: "Hopper", IsActive: true},
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo})

	candidates, err := svc.Search(context.Background(), SearchParams{RequesterExternalID: "ext-unknown"})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if candidates == nil {
		t.Fatal("expected an empty list, not nil")
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates for an unknown caller got %d", len(candidates))
	}
	if repo.searchParams.ActiveOnly {
		t.Fatal("expected directory query to be skipped for an unknown caller")
	}
}

func TestSearchInvalidFilter(t *testing.T) {
	requester := &models.User{ID: uuid.New(), ExternalID: "ext-self"}
	repo := &stubUsersRepo{byExternalID: map[string]*models.User{"ext-self": requester}}
	svc, _ := NewService(ServiceParams{Repo: repo})

	_, err := svc.Search(context.Background(), SearchParams{RequesterExternalID: "ext-self", ExperienceLevel: "lots"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}
