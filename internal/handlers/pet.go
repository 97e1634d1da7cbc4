package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/services"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type PetRequest struct {
	Name    string         `json:"name" binding:"required"`
	Age     int            `json:"age" binding:"min=0,max=200"`
	Type    string         `json:"type" binding:"required"`
	Address AddressRequest `json:"address" binding:"required"`
}

func (r PetRequest) toInput() services.PetInput {
	return services.PetInput{
		Name:    r.Name,
		Age:     r.Age,
		Type:    types.PetType(r.Type),
		Address: r.Address.toInput(),
	}
}

type PetHandler struct {
	petService services.PetService
}

func NewPetHandler(petService services.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

func (ph *PetHandler) Create(c *gin.Context) {
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid pet payload: %v", err))
		return
	}
	pet, err := ph.petService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pet)
}

func (ph *PetHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierr.Validation("invalid pet id: %v", err))
		return
	}
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid pet payload: %v", err))
		return
	}
	pet, err := ph.petService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (ph *PetHandler) MarkDeceased(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierr.Validation("invalid pet id: %v", err))
		return
	}
	pet, err := ph.petService.MarkDeceased(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}
