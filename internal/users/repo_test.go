package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:users_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  external_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  linkedin_url TEXT,
  experience_level TEXT NOT NULL,
  preparedness_level TEXT NOT NULL,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_external_id ON users (external_id);`
	require.NoError(t, db.Exec(usersTable).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM users")
	})
	return db
}

func seedUser(t *testing.T, repo Repository, externalID string, experience enums.ExperienceLevel, preparedness enums.PreparednessLevel, active bool) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID:        externalID,
		Name:              "Learner " + externalID,
		Email:             externalID + "@example.com",
		ExperienceLevel:   experience,
		PreparednessLevel: preparedness,
		IsActive:          active,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCreateAndFindByExternalID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	created := seedUser(t, repo, "ext-1", enums.ExperienceLevel3To6, enums.PreparednessBeginner, true)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByExternalID(context.Background(), "ext-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Learner ext-1", found.Name)

	missing, err := repo.FindByExternalID(context.Background(), "ext-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateDuplicateExternalID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	seedUser(t, repo, "ext-dup", enums.ExperienceLevel0To3, enums.PreparednessInitial, true)

	duplicate := &models.User{
		ExternalID:        "ext-dup",
		Name:              "Second",
		Email:             "second@example.com",
		ExperienceLevel:   enums.ExperienceLevel0To3,
		PreparednessLevel: enums.PreparednessInitial,
		IsActive:          true,
	}
	err := repo.Create(context.Background(), duplicate)
	require.Error(t, err)
}

func TestSearchFilters(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	matching := seedUser(t, repo, "ext-a", enums.ExperienceLevel3To6, enums.PreparednessIntermediate, true)
	seedUser(t, repo, "ext-b", enums.ExperienceLevel3To6, enums.PreparednessInitial, true)
	seedUser(t, repo, "ext-c", enums.ExperienceLevel9Up, enums.PreparednessIntermediate, true)
	seedUser(t, repo, "ext-d", enums.ExperienceLevel3To6, enums.PreparednessIntermediate, false)

	experience := enums.ExperienceLevel3To6
	preparedness := enums.PreparednessIntermediate
	found, err := repo.Search(context.Background(), SearchQuery{
		ExperienceLevel:   &experience,
		PreparednessLevel: &preparedness,
		ActiveOnly:        true,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, matching.ID, found[0].ID)
}

func TestSearchExcludesRequester(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	requester := seedUser(t, repo, "ext-self", enums.ExperienceLevel0To3, enums.PreparednessInitial, true)
	other := seedUser(t, repo, "ext-other", enums.ExperienceLevel0To3, enums.PreparednessInitial, true)

	found, err := repo.Search(context.Background(), SearchQuery{
		ExcludeID:  requester.ID,
		ActiveOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, other.ID, found[0].ID)
}

func TestFindByIDs(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	first := seedUser(t, repo, "ext-ids-1", enums.ExperienceLevel0To3, enums.PreparednessInitial, true)
	second := seedUser(t, repo, "ext-ids-2", enums.ExperienceLevel0To3, enums.PreparednessInitial, true)

	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{first.ID, second.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
