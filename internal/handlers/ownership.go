package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/services"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type OwnershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
	PetID  string `json:"pet_id" binding:"required"`
}

type OwnershipHandler struct {
	ownershipService services.OwnershipService
}

func NewOwnershipHandler(ownershipService services.OwnershipService) *OwnershipHandler {
	return &OwnershipHandler{ownershipService: ownershipService}
}

func (oh *OwnershipHandler) Link(c *gin.Context) {
	var req OwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid ownership payload: %v", err))
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(c, apierr.Validation("invalid user id: %v", err))
		return
	}
	petID, err := uuid.Parse(req.PetID)
	if err != nil {
		respondError(c, apierr.Validation("invalid pet id: %v", err))
		return
	}
	ownership, err := oh.ownershipService.Link(c.Request.Context(), userID, petID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ownership)
}

func (oh *OwnershipHandler) PetsByUser(c *gin.Context) {
	name := c.Query("name")
	firstName := c.Query("firstName")
	if name == "" || firstName == "" {
		respondError(c, apierr.Validation("name and firstName are required"))
		return
	}
	pets, err := oh.ownershipService.PetsByUser(c.Request.Context(), name, firstName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pets)
}

func (oh *OwnershipHandler) PetsByCity(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		respondError(c, apierr.Validation("city is required"))
		return
	}
	pets, err := oh.ownershipService.PetsByCity(c.Request.Context(), city)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pets)
}

func (oh *OwnershipHandler) UsersByPetTypeAndCity(c *gin.Context) {
	petType := c.Query("petType")
	city := c.Query("city")
	if petType == "" || city == "" {
		respondError(c, apierr.Validation("petType and city are required"))
		return
	}
	users, err := oh.ownershipService.UsersByPetTypeAndCity(c.Request.Context(), types.PetType(petType), city)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (oh *OwnershipHandler) PetsByWomenInCity(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		respondError(c, apierr.Validation("city is required"))
		return
	}
	pets, err := oh.ownershipService.PetsByWomenInCity(c.Request.Context(), city)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pets)
}
