package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/petfolio/petfolio-backend/internal/handlers"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/middleware"
)

type RouterConfig struct {
	Log              *logger.Logger
	AddressHandler   *handlers.AddressHandler
	UserHandler      *handlers.UserHandler
	PetHandler       *handlers.PetHandler
	OwnershipHandler *handlers.OwnershipHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("petfolio-backend"))
	router.Use(middleware.TraceID(cfg.Log))

	router.GET("/healthcheck", handlers.HealthCheck)

	addresses := router.Group("/addresses")
	{
		addresses.POST("/resolve", cfg.AddressHandler.Resolve)
	}

	users := router.Group("/users")
	{
		users.POST("", cfg.UserHandler.Create)
		users.PUT("/:id", cfg.UserHandler.Update)
		users.PATCH("/:id/death", cfg.UserHandler.MarkDeceased)
		users.GET("/by-name", cfg.UserHandler.ByName)
	}

	pets := router.Group("/pets")
	{
		pets.POST("", cfg.PetHandler.Create)
		pets.PUT("/:id", cfg.PetHandler.Update)
		pets.PATCH("/:id/death", cfg.PetHandler.MarkDeceased)
	}

	ownerships := router.Group("/ownerships")
	{
		ownerships.POST("", cfg.OwnershipHandler.Link)
		ownerships.GET("/pets-by-user", cfg.OwnershipHandler.PetsByUser)
		ownerships.GET("/pets-by-city", cfg.OwnershipHandler.PetsByCity)
		ownerships.GET("/users-by-pet-type-and-city", cfg.OwnershipHandler.UsersByPetTypeAndCity)
		ownerships.GET("/pets-by-women-in-city", cfg.OwnershipHandler.PetsByWomenInCity)
	}

	return router
}
