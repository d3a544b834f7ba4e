package middleware

import "github.com/gin-gonic/gin"

// organizationIDKey and actorIDKey carry the tenant binding TenantContext
// establishes for the duration of a request. Using custom types prevents
// collisions with other packages' context keys.
const (
	organizationIDKey = contextKey("organizationID")
	actorIDKey        = contextKey("actorID")
)

// GetOrganizationIDFromContext retrieves the tenant-scoping organization ID
// TenantContext attached to the Gin context.
func GetOrganizationIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(organizationIDKey)); exists {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	if v := c.Request.Context().Value(organizationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// GetActorIDFromContext retrieves the authenticated actor ID TenantContext
// attached to the Gin context.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(actorIDKey)); exists {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	if v := c.Request.Context().Value(actorIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
