package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scrollcampus/portal-api/internal/dto"
	apierrors "github.com/scrollcampus/portal-api/internal/errors"
	"github.com/scrollcampus/portal-api/internal/repository"
	"github.com/scrollcampus/portal-api/internal/utils"
)

// InstitutionHandler serves the administrative institution listing.
type InstitutionHandler struct {
	institutions repository.InstitutionRepository
}

// NewInstitutionHandler creates a new InstitutionHandler.
func NewInstitutionHandler(institutions repository.InstitutionRepository) *InstitutionHandler {
	return &InstitutionHandler{
		institutions: institutions,
	}
}

// ListInstitutions returns a page of institutions. Routed behind
// RequireRole(admin).
func (h *InstitutionHandler) ListInstitutions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	institutions, total, err := h.institutions.List(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch institutions")
		return
	}

	institutionDTOs := make([]dto.InstitutionDTO, len(institutions))
	for i, inst := range institutions {
		institutionDTOs[i] = dto.ToInstitutionDTO(inst)
	}

	c.JSON(http.StatusOK, gin.H{
		"institutions": institutionDTOs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
