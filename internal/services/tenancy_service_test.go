package services

import (
	"errors"
	"testing"
	"time"

	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tenancyTestEnv struct {
	db      *gorm.DB
	store   repository.MembershipStore
	service *TenancyService
}

func setupTenancyTestEnv(t *testing.T) tenancyTestEnv {
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

	store := repository.NewMembershipStore(db)
	return tenancyTestEnv{
		db:      db,
		store:   store,
		service: NewTenancyService(store, nil),
	}
}

func createTenancyTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestInstitution(t *testing.T, db *gorm.DB, name, slug string) *models.Institution {
	t.Helper()
	inst := &models.Institution{
		Name:     name,
		Slug:     slug,
		IsActive: true,
		Plan:     models.PlanCampus,
	}
	require.NoError(t, db.Create(inst).Error)
	return inst
}

func addTestMembership(t *testing.T, db *gorm.DB, inst *models.Institution, user *models.User, role models.Role, status models.MembershipStatus, createdAt time.Time) {
	t.Helper()
	member := &models.Membership{
		InstitutionID: inst.ID,
		UserID:        user.ID,
		Role:          role,
		Status:        status,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(member).Error)
}

func storedPreference(t *testing.T, db *gorm.DB, userID string) string {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	if user.PreferredInstitutionID == nil {
		return ""
	}
	return *user.PreferredInstitutionID
}

func TestTenancyService_Resolve_HonorsStoredPreference(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "ama@example.edu")
	first := createTestInstitution(t, env.db, "First College", "first-college")
	second := createTestInstitution(t, env.db, "Second College", "second-college")

	now := time.Now()
	addTestMembership(t, env.db, first, user, models.RoleFaculty, models.MembershipActive, now.Add(-2*time.Hour))
	addTestMembership(t, env.db, second, user, models.RoleStudent, models.MembershipActive, now.Add(-time.Hour))

	require.NoError(t, env.store.SetPreference(user.ID, second.ID))

	// Deterministic: repeated resolutions keep returning the preferred tenant.
	for i := 0; i < 3; i++ {
		active, err := env.service.Resolve(user.ID)
		require.NoError(t, err)
		require.False(t, active.IsNull())
		require.Equal(t, second.ID, active.ActiveInstitution.ID)
		require.Equal(t, models.RoleStudent, active.ActiveRole)
		require.Len(t, active.Memberships, 2)
	}
}

func TestTenancyService_Resolve_FallsBackToEarliestMembership(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "kofi@example.edu")
	earliest := createTestInstitution(t, env.db, "Earliest College", "earliest-college")
	later := createTestInstitution(t, env.db, "Later College", "later-college")

	now := time.Now()
	addTestMembership(t, env.db, earliest, user, models.RoleFaculty, models.MembershipActive, now.Add(-48*time.Hour))
	addTestMembership(t, env.db, later, user, models.RoleAdmin, models.MembershipActive, now.Add(-time.Hour))

	active, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.Equal(t, earliest.ID, active.ActiveInstitution.ID)
	require.Equal(t, models.RoleFaculty, active.ActiveRole)

	// The fallback choice is persisted as the new preference.
	require.Equal(t, earliest.ID, storedPreference(t, env.db, user.ID))
}

func TestTenancyService_Resolve_SelfHealsStalePreference(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "esi@example.edu")
	current := createTestInstitution(t, env.db, "Current College", "current-college")
	departed := createTestInstitution(t, env.db, "Departed College", "departed-college")

	addTestMembership(t, env.db, current, user, models.RoleStudent, models.MembershipActive, time.Now().Add(-time.Hour))
	require.NoError(t, env.store.SetPreference(user.ID, departed.ID))

	active, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.Equal(t, current.ID, active.ActiveInstitution.ID)
	require.Equal(t, current.ID, storedPreference(t, env.db, user.ID))
}

func TestTenancyService_Resolve_NullContextForNoMemberships(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "nobody@example.edu")

	active, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.True(t, active.IsNull())
	require.Nil(t, active.ActiveInstitution)
	require.Equal(t, models.Role(""), active.ActiveRole)
	require.Empty(t, active.Memberships)
	require.False(t, active.HasAtLeast(models.RoleStudent))
}

func TestTenancyService_Resolve_IgnoresInactiveMemberships(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "pending@example.edu")
	invited := createTestInstitution(t, env.db, "Invited College", "invited-college")
	suspendedFrom := createTestInstitution(t, env.db, "Suspended College", "suspended-college")

	now := time.Now()
	addTestMembership(t, env.db, invited, user, models.RoleStudent, models.MembershipInvited, now.Add(-2*time.Hour))
	addTestMembership(t, env.db, suspendedFrom, user, models.RoleFaculty, models.MembershipSuspended, now.Add(-time.Hour))

	active, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.True(t, active.IsNull())
}

func TestTenancyService_SwitchTo_Valid(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "switcher@example.edu")
	home := createTestInstitution(t, env.db, "Home College", "home-college")
	target := createTestInstitution(t, env.db, "Target College", "target-college")

	now := time.Now()
	addTestMembership(t, env.db, home, user, models.RoleFaculty, models.MembershipActive, now.Add(-2*time.Hour))
	addTestMembership(t, env.db, target, user, models.RoleAdmin, models.MembershipActive, now.Add(-time.Hour))

	current, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.Equal(t, home.ID, current.ActiveInstitution.ID)

	next, err := env.service.SwitchTo(user.ID, target.ID, current)
	require.NoError(t, err)
	require.Equal(t, target.ID, next.ActiveInstitution.ID)
	require.Equal(t, models.RoleAdmin, next.ActiveRole)
	require.Equal(t, target.ID, storedPreference(t, env.db, user.ID))

	// The prior context is untouched.
	require.Equal(t, home.ID, current.ActiveInstitution.ID)
}

func TestTenancyService_SwitchTo_NotAMember(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "outsider@example.edu")
	home := createTestInstitution(t, env.db, "Home College", "home-college")
	other := createTestInstitution(t, env.db, "Other College", "other-college")

	addTestMembership(t, env.db, home, user, models.RoleStudent, models.MembershipActive, time.Now().Add(-time.Hour))

	current, err := env.service.Resolve(user.ID)
	require.NoError(t, err)

	_, err = env.service.SwitchTo(user.ID, other.ID, current)
	require.ErrorIs(t, err, ErrNotAMember)

	// Nothing was mutated by the failed switch.
	require.Equal(t, home.ID, storedPreference(t, env.db, user.ID))
	require.Equal(t, home.ID, current.ActiveInstitution.ID)
}

func TestTenancyService_SwitchTo_NullContext(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "empty@example.edu")
	other := createTestInstitution(t, env.db, "Other College", "other-college")

	current, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.True(t, current.IsNull())

	_, err = env.service.SwitchTo(user.ID, other.ID, current)
	require.ErrorIs(t, err, ErrNotAMember)
	require.Equal(t, "", storedPreference(t, env.db, user.ID))
}

func TestTenancyService_EndToEnd(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "journey@example.edu")
	instA := createTestInstitution(t, env.db, "Alpha University", "alpha-university")
	instB := createTestInstitution(t, env.db, "Beta University", "beta-university")

	now := time.Now()
	addTestMembership(t, env.db, instA, user, models.RoleFaculty, models.MembershipActive, now.Add(-2*time.Hour))
	addTestMembership(t, env.db, instB, user, models.RoleAdmin, models.MembershipActive, now.Add(-time.Hour))

	// No preference: resolution lands on A and persists it.
	active, err := env.service.Resolve(user.ID)
	require.NoError(t, err)
	require.Equal(t, instA.ID, active.ActiveInstitution.ID)
	require.Equal(t, models.RoleFaculty, active.ActiveRole)
	require.Equal(t, instA.ID, storedPreference(t, env.db, user.ID))

	// Switch to B.
	active, err = env.service.SwitchTo(user.ID, instB.ID, active)
	require.NoError(t, err)
	require.Equal(t, instB.ID, active.ActiveInstitution.ID)
	require.Equal(t, models.RoleAdmin, active.ActiveRole)
	require.Equal(t, instB.ID, storedPreference(t, env.db, user.ID))

	// Switch to an unknown institution fails and leaves B active.
	_, err = env.service.SwitchTo(user.ID, "3f1f1d64-0000-4000-8000-000000000000", active)
	require.ErrorIs(t, err, ErrNotAMember)
	require.Equal(t, instB.ID, active.ActiveInstitution.ID)
	require.Equal(t, instB.ID, storedPreference(t, env.db, user.ID))
}

// faultyStore wraps a MembershipStore with injectable failures.
type faultyStore struct {
	repository.MembershipStore
	listErr error
	instErr error
	prefErr error
	setErr  error
}

func (s *faultyStore) ListActiveMemberships(userID string) ([]models.Membership, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MembershipStore.ListActiveMemberships(userID)
}

func (s *faultyStore) GetInstitutions(ids []string) ([]models.Institution, error) {
	if s.instErr != nil {
		return nil, s.instErr
	}
	return s.MembershipStore.GetInstitutions(ids)
}

func (s *faultyStore) GetPreference(userID string) (string, error) {
	if s.prefErr != nil {
		return "", s.prefErr
	}
	return s.MembershipStore.GetPreference(userID)
}

func (s *faultyStore) SetPreference(userID, institutionID string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MembershipStore.SetPreference(userID, institutionID)
}

func TestTenancyService_Resolve_StoreFailure(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "unlucky@example.edu")
	inst := createTestInstitution(t, env.db, "Some College", "some-college")
	addTestMembership(t, env.db, inst, user, models.RoleStudent, models.MembershipActive, time.Now())

	boom := errors.New("store down")

	for name, store := range map[string]*faultyStore{
		"membership list": {MembershipStore: env.store, listErr: boom},
		"institutions":    {MembershipStore: env.store, instErr: boom},
		"preference":      {MembershipStore: env.store, prefErr: boom},
	} {
		service := NewTenancyService(store, nil)
		active, err := service.Resolve(user.ID)
		require.ErrorIsf(t, err, ErrResolutionFailed, "fetch failure: %s", name)
		require.Nilf(t, active, "no partial context on %s failure", name)
	}
}

func TestTenancyService_SwitchTo_PersistFailure(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "stuck@example.edu")
	home := createTestInstitution(t, env.db, "Home College", "home-college")
	target := createTestInstitution(t, env.db, "Target College", "target-college")

	now := time.Now()
	addTestMembership(t, env.db, home, user, models.RoleStudent, models.MembershipActive, now.Add(-2*time.Hour))
	addTestMembership(t, env.db, target, user, models.RoleFaculty, models.MembershipActive, now.Add(-time.Hour))

	current, err := env.service.Resolve(user.ID)
	require.NoError(t, err)

	service := NewTenancyService(&faultyStore{MembershipStore: env.store, setErr: errors.New("write refused")}, nil)
	_, err = service.SwitchTo(user.ID, target.ID, current)
	require.ErrorIs(t, err, ErrPersistFailed)

	// The user stays in their prior tenant.
	require.Equal(t, home.ID, storedPreference(t, env.db, user.ID))
	require.Equal(t, home.ID, current.ActiveInstitution.ID)
}

func TestTenancyService_Resolve_RepairWriteFailureIsNonFatal(t *testing.T) {
	env := setupTenancyTestEnv(t)

	user := createTenancyTestUser(t, env.db, "patient@example.edu")
	inst := createTestInstitution(t, env.db, "Patient College", "patient-college")
	addTestMembership(t, env.db, inst, user, models.RoleStudent, models.MembershipActive, time.Now())

	service := NewTenancyService(&faultyStore{MembershipStore: env.store, setErr: errors.New("write refused")}, nil)
	active, err := service.Resolve(user.ID)
	require.NoError(t, err)
	require.Equal(t, inst.ID, active.ActiveInstitution.ID)
}
