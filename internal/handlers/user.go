package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/services"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type UserRequest struct {
	Name      string         `json:"name" binding:"required"`
	FirstName string         `json:"first_name" binding:"required"`
	Age       int            `json:"age"`
	Gender    string         `json:"gender" binding:"required"`
	Address   AddressRequest `json:"address" binding:"required"`
}

func (r UserRequest) toInput() services.UserInput {
	return services.UserInput{
		Name:      r.Name,
		FirstName: r.FirstName,
		Age:       r.Age,
		Gender:    types.Gender(r.Gender),
		Address:   r.Address.toInput(),
	}
}

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid user payload: %v", err))
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uh *UserHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierr.Validation("invalid user id: %v", err))
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid user payload: %v", err))
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uh *UserHandler) MarkDeceased(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierr.Validation("invalid user id: %v", err))
		return
	}
	user, err := uh.userService.MarkDeceased(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ByName lists every user matching the name pair so callers can
// disambiguate homonyms by id.
func (uh *UserHandler) ByName(c *gin.Context) {
	name := c.Query("name")
	firstName := c.Query("firstName")
	if name == "" || firstName == "" {
		respondError(c, apierr.Validation("name and firstName are required"))
		return
	}
	users, err := uh.userService.ByNameAndFirstName(c.Request.Context(), name, firstName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
