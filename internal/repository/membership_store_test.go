package repository

import (
	"testing"
	"time"

	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.Membership{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedInstitution(t *testing.T, db *gorm.DB, name, slug string) *models.Institution {
	t.Helper()
	inst := &models.Institution{Name: name, Slug: slug, IsActive: true, Plan: models.PlanFree}
	require.NoError(t, db.Create(inst).Error)
	return inst
}

func seedMembership(t *testing.T, db *gorm.DB, instID, userID string, role models.Role, status models.MembershipStatus, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Membership{
		InstitutionID: instID,
		UserID:        userID,
		Role:          role,
		Status:        status,
		CreatedAt:     createdAt,
	}).Error)
}

func TestMembershipStore_ListActiveMemberships(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewMembershipStore(db)

	user := seedUser(t, db, "list@example.edu")
	first := seedInstitution(t, db, "First", "first")
	second := seedInstitution(t, db, "Second", "second")
	third := seedInstitution(t, db, "Third", "third")

	now := time.Now()
	seedMembership(t, db, second.ID, user.ID, models.RoleAdmin, models.MembershipActive, now.Add(-time.Hour))
	seedMembership(t, db, first.ID, user.ID, models.RoleStudent, models.MembershipActive, now.Add(-3*time.Hour))
	seedMembership(t, db, third.ID, user.ID, models.RoleFaculty, models.MembershipSuspended, now.Add(-2*time.Hour))

	memberships, err := store.ListActiveMemberships(user.ID)
	require.NoError(t, err)

	// Suspended rows are filtered; active rows come back in creation order.
	require.Len(t, memberships, 2)
	require.Equal(t, first.ID, memberships[0].InstitutionID)
	require.Equal(t, second.ID, memberships[1].InstitutionID)

	// No join: institutions are not populated by this read.
	require.Empty(t, memberships[0].Institution.ID)
}

func TestMembershipStore_GetInstitutions(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewMembershipStore(db)

	first := seedInstitution(t, db, "First", "first")
	second := seedInstitution(t, db, "Second", "second")
	seedInstitution(t, db, "Third", "third")

	institutions, err := store.GetInstitutions([]string{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, institutions, 2)

	institutions, err = store.GetInstitutions(nil)
	require.NoError(t, err)
	require.Empty(t, institutions)
}

func TestMembershipStore_PreferenceRoundTrip(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewMembershipStore(db)

	user := seedUser(t, db, "pref@example.edu")
	inst := seedInstitution(t, db, "Pref", "pref")

	pref, err := store.GetPreference(user.ID)
	require.NoError(t, err)
	require.Equal(t, "", pref)

	require.NoError(t, store.SetPreference(user.ID, inst.ID))

	pref, err = store.GetPreference(user.ID)
	require.NoError(t, err)
	require.Equal(t, inst.ID, pref)
}

func TestMembershipStore_SetPreference_UnknownUser(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewMembershipStore(db)

	inst := seedInstitution(t, db, "Orphan", "orphan")
	err := store.SetPreference("11111111-2222-4333-8444-555555555555", inst.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
