package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	accountIDKey = "accountID"
	verifiedKey  = "verified"

	headerRequestID = "X-Request-ID"
	// legacy token header still sent by older clients
	headerAuthToken = "x-auth-token"
)

// requestLogger tags every request with an id, hands a request-scoped logger
// down through the request context and logs the outcome.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		l := s.logger.With("request_id", requestID)
		ctx := logging.IntoContext(c.Request.Context(), l)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			l.Error(ctx, "HTTP server error", fields...)
		case status >= 400:
			l.Warn(ctx, "HTTP client error", fields...)
		default:
			l.Info(ctx, "HTTP request", fields...)
		}
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+headerAuthToken)
		h.Set("Access-Control-Expose-Headers", headerRequestID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authRequired accepts "Authorization: Bearer <token>" or the x-auth-token
// header and stores the token's account id and verified flag on the context.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithMessage(c, http.StatusUnauthorized, msgNoToken)
			return
		}

		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			abortWithMessage(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		c.Set(accountIDKey, claims.AccountID)
		c.Set(verifiedKey, claims.Verified)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(c.GetHeader(headerAuthToken))
}
