package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
)

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes business rules for learner profiles.
type Service interface {
	UpsertProfile(ctx context.Context, params ProfileParams) (uuid.UUID, error)
	UpdateProfile(ctx context.Context, params ProfileParams) (uuid.UUID, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Search(ctx context.Context, params SearchParams) ([]Candidate, error)
}

type service struct {
	repo Repository
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// UpsertProfile creates the caller's profile when none exists. A repeated
// call returns the existing profile id and leaves the stored attributes
// untouched.
func (s *service) UpsertProfile(ctx context.Context, params ProfileParams) (uuid.UUID, error) {
	experience, preparedness, err := parseLevels(params)
	if err != nil {
		return uuid.Nil, err
	}

	existing, err := s.repo.FindByExternalID(ctx, params.ExternalID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up profile")
	}
	if existing != nil {
		return existing.ID, nil
	}

	user := &models.User{
		ExternalID:        params.ExternalID,
		Name:              params.Name,
		Email:             params.Email,
		LinkedinURL:       params.LinkedinURL,
		ExperienceLevel:   experience,
		PreparednessLevel: preparedness,
		Phone:             params.Phone,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// A concurrent first call may have won the unique index race;
		// the profile it created is the one to return.
		existing, lookupErr := s.repo.FindByExternalID(ctx, params.ExternalID)
		if lookupErr == nil && existing != nil {
			return existing.ID, nil
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create profile")
	}
	return user.ID, nil
}

// UpdateProfile overwrites the caller's mutable profile attributes.
func (s *service) UpdateProfile(ctx context.Context, params ProfileParams) (uuid.UUID, error) {
	experience, preparedness, err := parseLevels(params)
	if err != nil {
		return uuid.Nil, err
	}

	existing, err := s.repo.FindByExternalID(ctx, params.ExternalID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up profile")
	}
	if existing == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	existing.Name = params.Name
	existing.Email = params.Email
	existing.LinkedinURL = params.LinkedinURL
	existing.ExperienceLevel = experience
	existing.PreparednessLevel = preparedness
	existing.Phone = params.Phone
	if err := s.repo.Update(ctx, existing); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update profile")
	}
	return existing.ID, nil
}

// GetByExternalID resolves the caller's profile, nil when none exists.
func (s *service) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, nil
	}
	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up profile")
	}
	return user, nil
}

// Search lists active learners matching the optional level filters. The
// requester must resolve to a profile; an unknown caller sees an empty
// directory, never the full one. The requester's own profile never appears
// in the results.
func (s *service) Search(ctx context.Context, params SearchParams) ([]Candidate, error) {
	requester, err := s.repo.FindByExternalID(ctx, params.RequesterExternalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve requester")
	}
	if requester == nil {
		return []Candidate{}, nil
	}

	repoParams := SearchQuery{ActiveOnly: true, ExcludeID: requester.ID}

	if params.ExperienceLevel != "" {
		level, err := enums.ParseExperienceLevel(params.ExperienceLevel)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level filter")
		}
		repoParams.ExperienceLevel = &level
	}
	if params.PreparednessLevel != "" {
		level, err := enums.ParsePreparednessLevel(params.PreparednessLevel)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid preparedness level filter")
		}
		repoParams.PreparednessLevel = &level
	}

	found, err := s.repo.Search(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to search learners")
	}

	candidates := make([]Candidate, 0, len(found))
	for _, user := range found {
		candidates = append(candidates, toCandidate(user))
	}
	return candidates, nil
}

func parseLevels(params ProfileParams) (enums.ExperienceLevel, enums.PreparednessLevel, error) {
	experience, err := enums.ParseExperienceLevel(params.ExperienceLevel)
	if err != nil {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level")
	}
	preparedness, err := enums.ParsePreparednessLevel(params.PreparednessLevel)
	if err != nil {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid preparedness level")
	}
	return experience, preparedness, nil
}
