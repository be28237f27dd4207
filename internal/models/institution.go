package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanCampus     PlanTier = "campus"
	PlanEnterprise PlanTier = "enterprise"
)

// Institution is a tenant. This service only reads institutions;
// creation and branding updates belong to the provisioning flows.
type Institution struct {
	ID          string         `gorm:"type:uuid;primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	LogoURL     string         `gorm:"type:varchar(500)" json:"logo_url"`
	AccentColor string         `gorm:"type:varchar(20)" json:"accent_color"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Plan        PlanTier       `gorm:"type:varchar(20);not null;default:free" json:"plan"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:InstitutionID" json:"-"`
}

func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
