package repository

import (
	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/utils"
)

// MembershipStore is the data boundary the tenancy core depends on.
//
// ListActiveMemberships and GetInstitutions are deliberately two separate,
// unjoined reads. Filtering institutions by "institutions the caller is a
// member of" while computing the membership set itself sends row-level-style
// backends into recursive policy evaluation, so the resolver fetches
// memberships first and then looks institutions up by id in one batch.
type MembershipStore interface {
	// GetPreference returns the user's stored tenant preference, or "" when
	// no preference has been persisted yet.
	GetPreference(userID string) (string, error)

	// ListActiveMemberships returns the user's memberships with status
	// active, in creation order.
	ListActiveMemberships(userID string) ([]models.Membership, error)

	// GetInstitutions returns the institutions for the given ids in a single
	// batched query.
	GetInstitutions(ids []string) ([]models.Institution, error)

	// SetPreference persists institutionID as the user's tenant preference.
	SetPreference(userID, institutionID string) error
}

// InstitutionRepository serves the administrative institution listing.
type InstitutionRepository interface {
	// List returns a page of institutions plus the total count.
	List(params utils.PaginationParams) ([]models.Institution, int64, error)

	// FindByID finds an institution by ID
	FindByID(id string) (*models.Institution, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
