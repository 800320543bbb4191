package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
	"github.com/noah-isme/capacity-api/pkg/response"
)

// ContextPrincipalKey is the gin context key storing the authenticated caller.
const ContextPrincipalKey = "principal"

// APIKeyHeader carries a static integration key.
const APIKeyHeader = "X-API-Key"

type authenticator interface {
	VerifyBasic(ctx context.Context, username, password string) (*models.Principal, error)
	ValidateToken(token string) (*models.Principal, error)
	VerifyAPIKey(key string) (*models.Principal, error)
}

// Auth protects routes by requiring an API key, Basic credentials or a Bearer token.
func Auth(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authenticate(c, auth)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

func authenticate(c *gin.Context, auth authenticator) (*models.Principal, error) {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return auth.VerifyAPIKey(key)
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	switch {
	case strings.EqualFold(parts[0], "Bearer"):
		return auth.ValidateToken(strings.TrimSpace(parts[1]))
	case strings.EqualFold(parts[0], "Basic"):
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid basic credentials")
		}
		return auth.VerifyBasic(c.Request.Context(), username, password)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unsupported authorization scheme")
	}
}
