package repository

import (
	"github.com/scrollcampus/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormMembershipStore is a GORM implementation of MembershipStore
type GormMembershipStore struct {
	db *gorm.DB
}

// NewMembershipStore creates a new MembershipStore
func NewMembershipStore(db *gorm.DB) MembershipStore {
	return &GormMembershipStore{db: db}
}

// GetPreference reads the user's stored tenant preference.
func (s *GormMembershipStore) GetPreference(userID string) (string, error) {
	var user models.User
	if err := s.db.Select("preferred_institution_id").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	if user.PreferredInstitutionID == nil {
		return "", nil
	}
	return *user.PreferredInstitutionID, nil
}

// ListActiveMemberships returns the user's active memberships in creation
// order. No Preload here: institutions are fetched separately through
// GetInstitutions so the two reads never depend on each other.
func (s *GormMembershipStore) ListActiveMemberships(userID string) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := s.db.
		Where("user_id = ? AND status = ?", userID, models.MembershipActive).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// GetInstitutions fetches institution records by id in one batched query.
func (s *GormMembershipStore) GetInstitutions(ids []string) ([]models.Institution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var institutions []models.Institution
	if err := s.db.Where("id IN ?", ids).Find(&institutions).Error; err != nil {
		return nil, err
	}
	return institutions, nil
}

// SetPreference persists the user's tenant preference.
func (s *GormMembershipStore) SetPreference(userID, institutionID string) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("preferred_institution_id", institutionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
