package models

import "time"

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipInvited   MembershipStatus = "invited"
	MembershipSuspended MembershipStatus = "suspended"
)

// Membership grants a user a role within one institution. The composite
// primary key enforces at most one row per (institution, user) pair.
// CreatedAt doubles as the fallback ordering key during tenant resolution.
// Rows are created and removed by the invitation flows; this service only
// reads them.
type Membership struct {
	InstitutionID string           `gorm:"type:uuid;primarykey" json:"institution_id"`
	UserID        string           `gorm:"type:uuid;primarykey" json:"user_id"`
	Role          Role             `gorm:"type:varchar(20);not null" json:"role"`
	Status        MembershipStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt     time.Time        `json:"created_at"`

	// Relations
	Institution Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	User        User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
