package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey        = "request_id"
)

const msgNotAuthorized = "Not authorized"

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user attached by the access guard.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// accessGuard admits requests carrying a valid bearer token for an existing
// user. Every rejection looks the same to the client.
func (h *Handler) accessGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := h.log(c)

		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			log.Debug(ctx, "rejected request", "reason", "missing bearer token")
			denyUnauthorized(c)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		if token == "" {
			log.Debug(ctx, "rejected request", "reason", "empty token")
			denyUnauthorized(c)
			return
		}

		userID, err := h.users.VerifyToken(token)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				reason = "token expired"
			}
			log.Info(ctx, "rejected request", "reason", reason, "error", err)
			denyUnauthorized(c)
			return
		}

		user, err := h.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				log.Info(ctx, "rejected request", "reason", "unknown user", "user_id", userID)
			} else {
				log.Error(ctx, "user lookup failed", "user_id", userID, "error", err)
			}
			denyUnauthorized(c)
			return
		}

		c.Request = c.Request.WithContext(WithUser(ctx, user))
		c.Next()
	}
}

func denyUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: msgNotAuthorized})
}

// currentUser is only valid behind accessGuard.
func currentUser(c *gin.Context) *models.User {
	u, _ := UserFromContext(c.Request.Context())
	return u
}

// requestLogger tags each request with an id and logs its outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.RequestIDHeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(common.RequestIDHeaderName, rid)

		start := time.Now()
		c.Next()

		h.log(c).Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (h *Handler) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware allows the configured origins, given as a comma-separated
// list; "*" allows any origin.
func corsMiddleware(origins string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", common.AuthorizationHeaderName, common.RequestIDHeaderName},
		ExposeHeaders: []string{common.RequestIDHeaderName},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		switch {
		case o == "*":
			cfg.AllowAllOrigins = true
		case o != "":
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowOrigins = nil
	} else {
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
