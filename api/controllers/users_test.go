package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	internalusers "github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
)

type stubUsersService struct {
	upsertFn func(ctx context.Context, params internalusers.ProfileParams) (uuid.UUID, error)
	updateFn func(ctx context.Context, params internalusers.ProfileParams) (uuid.UUID, error)
	getFn    func(ctx context.Context, externalID string) (*models.User, error)
	searchFn func(ctx context.Context, params internalusers.SearchParams) ([]internalusers.Candidate, error)
}

func (s stubUsersService) UpsertProfile(ctx context.Context, params internalusers.ProfileParams) (uuid.UUID, error) {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, params)
	}
	return uuid.New(), nil
}

func (s stubUsersService) UpdateProfile(ctx context.Context, params internalusers.ProfileParams) (uuid.UUID, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, params)
	}
	return uuid.New(), nil
}

func (s stubUsersService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if s.getFn != nil {
		return s.getFn(ctx, externalID)
	}
	return nil, nil
}

func (s stubUsersService) Search(ctx context.Context, params internalusers.SearchParams) ([]internalusers.Candidate, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, params)
	}
	return nil, nil
}

func TestProfileUpsertUsesIdentity(t *testing.T) {
	svc := stubUsersService{
		upsertFn: func(ctx context.Context, params internalusers.ProfileParams) (uuid.UUID, error) {
			if params.ExternalID != "u1" {
				t.Fatalf("unexpected external id %q", params.ExternalID)
			}
			if params.Name != "Alice" {
				t.Fatalf("unexpected name %q", params.Name)
			}
			return uuid.New(), nil
		},
	}

	body := `{"name":"Alice","email":"alice@example.com","experienceLevel":"3-6","preparednessLevel":"Beginner"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), "u1")
	resp := httptest.NewRecorder()
	ProfileUpsert(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProfileUpsertRejectsBadEmail(t *testing.T) {
	body := `{"name":"Alice","email":"not-an-email","experienceLevel":"3-6","preparednessLevel":"Beginner"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), "u1")
	resp := httptest.NewRecorder()
	ProfileUpsert(stubUsersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProfileMeNotFound(t *testing.T) {
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	resp := httptest.NewRecorder()
	ProfileMe(stubUsersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestProfileMeIncludesPhone(t *testing.T) {
	phone := "+1-555-0100"
	svc := stubUsersService{
		getFn: func(ctx context.Context, externalID string) (*models.User, error) {
			return &models.User{
				ID:                uuid.New(),
				ExternalID:        externalID,
				Name:              "Alice",
				Email:             "alice@example.com",
				ExperienceLevel:   enums.ExperienceLevel3To6,
				PreparednessLevel: enums.PreparednessBeginner,
				Phone:             &phone,
				IsActive:          true,
			}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u1")
	resp := httptest.NewRecorder()
	ProfileMe(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data profileResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Phone == nil || *envelope.Data.Phone != phone {
		t.Fatalf("expected own phone visible, got %v", envelope.Data.Phone)
	}
}

func TestBuddySearchPassesFilters(t *testing.T) {
	svc := stubUsersService{
		searchFn: func(ctx context.Context, params internalusers.SearchParams) ([]internalusers.Candidate, error) {
			if params.RequesterExternalID != "u1" {
				t.Fatalf("unexpected requester %q", params.RequesterExternalID)
			}
			if params.ExperienceLevel != "3-6" || params.PreparednessLevel != "Beginner" {
				t.Fatalf("unexpected filters %q %q", params.ExperienceLevel, params.PreparednessLevel)
			}
			return []internalusers.Candidate{{Name: "Bob"}}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/?experienceLevel=3-6&preparednessLevel=Beginner", nil), "u1")
	resp := httptest.NewRecorder()
	BuddySearch(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestBuddySearchRequiresIdentity(t *testing.T) {
	svc := stubUsersService{
		searchFn: func(ctx context.Context, params internalusers.SearchParams) ([]internalusers.Candidate, error) {
			t.Fatal("search must not run without a caller identity")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	BuddySearch(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
