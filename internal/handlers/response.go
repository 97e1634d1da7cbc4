package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/ctxutil"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apierr.StatusOf(err), gin.H{
		"message": err.Error(),
		"traceId": ctxutil.GetTraceID(c.Request.Context()),
	})
}
