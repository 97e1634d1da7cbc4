package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfolio/petfolio-backend/internal/ctxutil"
	"github.com/petfolio/petfolio-backend/internal/logger"
)

const TraceIDHeader = "traceId"

// TraceID assigns every request a fresh trace id, carries it through the
// request context, echoes it as a response header, and logs request start
// and end.
func TraceID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		td := &ctxutil.TraceData{TraceID: traceID}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(TraceIDHeader, traceID)

		log.Info("REQ start", "method", c.Request.Method, "path", c.Request.URL.Path, "traceId", traceID)
		c.Next()
		log.Info("REQ end", "status", c.Writer.Status(), "traceId", traceID)
	}
}
