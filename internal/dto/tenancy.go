package dto

import (
	"time"

	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/services"
)

// InstitutionDTO represents an institution in API responses
type InstitutionDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	LogoURL     string          `json:"logo_url,omitempty"`
	AccentColor string          `json:"accent_color,omitempty"`
	IsActive    bool            `json:"is_active"`
	Plan        models.PlanTier `json:"plan"`
}

// MembershipDTO represents one of the user's memberships
type MembershipDTO struct {
	Institution InstitutionDTO          `json:"institution"`
	Role        models.Role             `json:"role"`
	Status      models.MembershipStatus `json:"status"`
	JoinedAt    time.Time               `json:"joined_at"`
}

// ActiveContextDTO is the resolved tenant scope returned to the client.
// ActiveInstitution and ActiveRole are null for users without memberships.
type ActiveContextDTO struct {
	ActiveInstitution *InstitutionDTO `json:"active_institution"`
	ActiveRole        *models.Role    `json:"active_role"`
	Memberships       []MembershipDTO `json:"memberships"`
}

// ToInstitutionDTO converts an institution model to DTO
func ToInstitutionDTO(inst models.Institution) InstitutionDTO {
	return InstitutionDTO{
		ID:          inst.ID,
		Name:        inst.Name,
		Slug:        inst.Slug,
		LogoURL:     inst.LogoURL,
		AccentColor: inst.AccentColor,
		IsActive:    inst.IsActive,
		Plan:        inst.Plan,
	}
}

// ToMembershipDTO converts a membership to DTO
func ToMembershipDTO(member models.Membership) MembershipDTO {
	return MembershipDTO{
		Institution: ToInstitutionDTO(member.Institution),
		Role:        member.Role,
		Status:      member.Status,
		JoinedAt:    member.CreatedAt,
	}
}

// ToActiveContextDTO converts a resolved context to DTO
func ToActiveContextDTO(active *services.ActiveContext) ActiveContextDTO {
	memberships := make([]MembershipDTO, len(active.Memberships))
	for i, member := range active.Memberships {
		memberships[i] = ToMembershipDTO(member)
	}

	out := ActiveContextDTO{
		Memberships: memberships,
	}
	if !active.IsNull() {
		inst := ToInstitutionDTO(*active.ActiveInstitution)
		role := active.ActiveRole
		out.ActiveInstitution = &inst
		out.ActiveRole = &role
	}
	return out
}
