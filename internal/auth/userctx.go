package auth

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/webforge-labs/webforge-backend/internal/users"
)

const (
	CtxExternalUID = "external_uid"
	CtxUserDBID    = "user_db_id"
)

// WithUser resolves the request identity and stores the stable user row
// id in context. When a Firebase auth client is configured the Bearer
// token is verified; otherwise identity comes from the X-User-Id header
// (development only).
func WithUser(authClient *fbauth.Client, userStore users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uid, email string

		if authClient != nil {
			token := extractToken(c)
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
				c.Abort()
				return
			}
			decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			uid = decoded.UID
			if e, ok := decoded.Claims["email"].(string); ok {
				email = e
			}
		} else {
			uid = strings.TrimSpace(c.GetHeader("X-User-Id"))
			if uid == "" {
				uid = "demo-user"
			}
			email = c.GetHeader("X-User-Email")
		}

		dbID, err := userStore.EnsureUser(c.Request.Context(), users.UpsertUser{
			ExternalUID: uid,
			Email:       email,
			DisplayName: c.GetHeader("X-User-Name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxExternalUID, uid)
		c.Set(CtxUserDBID, dbID)
		c.Next()
	}
}

// UserID returns the stable user row id set by WithUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}

// ExternalUID returns the external identity set by WithUser.
func ExternalUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxExternalUID))
}

// AdminOnly restricts a group to the configured admin identity.
func AdminOnly(adminUID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminUID == "" || ExternalUID(c) != adminUID {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
