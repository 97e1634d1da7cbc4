package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/services"
)

type AddressRequest struct {
	City        string `json:"city" binding:"required"`
	Type        string `json:"type" binding:"required"`
	AddressName string `json:"address_name" binding:"required"`
	Number      string `json:"number" binding:"required"`
}

func (r AddressRequest) toInput() services.AddressInput {
	return services.AddressInput{
		City:        r.City,
		Type:        r.Type,
		AddressName: r.AddressName,
		Number:      r.Number,
	}
}

type AddressHandler struct {
	addressService services.AddressService
}

func NewAddressHandler(addressService services.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// Resolve returns the canonical address for the given fields, creating it
// when absent. Repeated calls with field-equivalent input return the same
// identity.
func (ah *AddressHandler) Resolve(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid address payload: %v", err))
		return
	}
	address, err := ah.addressService.FindOrCreate(c.Request.Context(), nil, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}
