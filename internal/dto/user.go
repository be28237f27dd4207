package dto

import (
	"time"

	"github.com/scrollcampus/portal-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	PreferredInstitutionID *string   `json:"preferred_institution_id"`
	CreatedAt              time.Time `json:"created_at"`
}

// ToUserDTO converts a user model to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                     user.ID,
		Email:                  user.Email,
		PreferredInstitutionID: user.PreferredInstitutionID,
		CreatedAt:              user.CreatedAt,
	}
}
