package repository

import (
	"github.com/scrollcampus/portal-api/internal/database"
	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/utils"
	"gorm.io/gorm"
)

// GormInstitutionRepository is a GORM implementation of InstitutionRepository
type GormInstitutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &GormInstitutionRepository{db: db}
}

// List retrieves institutions with pagination, newest first.
func (r *GormInstitutionRepository) List(params utils.PaginationParams) ([]models.Institution, int64, error) {
	var total int64
	if err := r.db.Model(&models.Institution{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var institutions []models.Institution
	if err := r.db.
		Scopes(database.Paginate(params)).
		Order("created_at DESC").
		Find(&institutions).Error; err != nil {
		return nil, 0, err
	}

	return institutions, total, nil
}

// FindByID finds an institution by ID
func (r *GormInstitutionRepository) FindByID(id string) (*models.Institution, error) {
	var institution models.Institution
	if err := r.db.First(&institution, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}
