package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// organizationClaims is the shape of the bearer token issued by the
// external session/organization-authentication collaborator named in
// spec §1: it carries the tenant (organizationID) and actor (Subject)
// this request acts as. Issuing that token is out of scope for the core;
// this middleware only parses it.
type organizationClaims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"organizationID"`
}

// TenantContext establishes the session-level tenant binding required by
// spec §5: it parses the bearer JWT, extracts organizationID/actorID, and
// attaches both to the request's standard context.Context so every
// downstream service call is scoped to the right tenant. It is a
// reference implementation of the external collaborator's output contract,
// not an audited part of the core.
func TenantContext(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims := &organizationClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("invalid token", "error", err)
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		actorID := claims.Subject
		organizationID := claims.OrganizationID
		if actorID == "" || organizationID == "" {
			logger.Error("token missing subject or organizationID claim")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), organizationIDKey, organizationID)
		ctx = context.WithValue(ctx, actorIDKey, actorID)
		enrichedLogger := logger.With(slog.String("organization_id", organizationID), slog.String("actor_id", actorID))
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(organizationIDKey), organizationID)
		c.Set(string(actorIDKey), actorID)

		defer func() {
			logger.Debug("tenant context torn down", slog.String("organization_id", organizationID))
		}()

		c.Next()
	}
}
