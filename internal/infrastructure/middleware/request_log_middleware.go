package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"murmurnet/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLog tags every request with an ID, echoes it in the response, and
// logs the request line with correlation fields. The authenticated username
// is attached after the handler chain ran so the auth gate has had its say.
func RequestLog(contextLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		if identity, ok := CurrentIdentity(c); ok {
			ctx = logger.WithUsername(ctx, identity.Username)
		}
		contextLogger.LogRequest(ctx, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
