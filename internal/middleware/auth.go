package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
	"github.com/noah-isme/dorm-admin-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated principal.
const ContextUserKey = "currentUser"

// SessionAuthenticator resolves request credentials to a principal.
type SessionAuthenticator interface {
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)
	Authenticate(ctx context.Context, username, password string) (*models.Principal, error)
}

// Auth requires a session cookie, a bearer session token or basic credentials.
func Auth(authn SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authenticate(c, authn, cookieName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, principal)
		c.Next()
	}
}

// OptionalAuth attaches the principal when credentials are valid and lets
// anonymous requests through otherwise.
func OptionalAuth(authn SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := authenticate(c, authn, cookieName); err == nil && principal != nil {
			c.Set(ContextUserKey, principal)
		}
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal or nil.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}

// SessionToken returns the session token carried by the request, preferring
// the Authorization header over the cookie.
func SessionToken(c *gin.Context, cookieName string) string {
	if scheme, value := authorization(c); strings.EqualFold(scheme, "Bearer") {
		return value
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func authenticate(c *gin.Context, authn SessionAuthenticator, cookieName string) (*models.Principal, error) {
	scheme, value := authorization(c)
	switch {
	case strings.EqualFold(scheme, "Basic"):
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return authn.Authenticate(c.Request.Context(), username, password)
	case strings.EqualFold(scheme, "Bearer"):
		return authn.ValidateSession(c.Request.Context(), value)
	case scheme != "":
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}

	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return nil, nil
	}
	return authn.ValidateSession(c.Request.Context(), token)
}

func authorization(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
