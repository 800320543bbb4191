package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
	"github.com/noah-isme/capacity-api/pkg/response"
)

type stubAuthenticator struct {
	basicUser string
	basicPass string
	token     string
	apiKey    string
}

func (s stubAuthenticator) VerifyBasic(_ context.Context, username, password string) (*models.Principal, error) {
	if username != s.basicUser || password != s.basicPass {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return &models.Principal{UserID: 1, Username: username, Method: models.AuthMethodBasic}, nil
}

func (s stubAuthenticator) ValidateToken(token string) (*models.Principal, error) {
	if token != s.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.Principal{UserID: 2, Username: "bearer-user", Method: models.AuthMethodBearer}, nil
}

func (s stubAuthenticator) VerifyAPIKey(key string) (*models.Principal, error) {
	if key != s.apiKey {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid api key")
	}
	return &models.Principal{Username: "api-key", Method: models.AuthMethodAPIKey}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(stubAuthenticator{basicUser: "ops", basicPass: "pw", token: "good-token", apiKey: "k1"}))
	r.GET("/secure", func(c *gin.Context) {
		value, _ := c.Get(ContextPrincipalKey)
		c.JSON(http.StatusOK, value)
	})
	return r
}

func TestAuthAcceptsSupportedSchemes(t *testing.T) {
	cases := []struct {
		name   string
		header string
		value  string
		method models.AuthMethod
	}{
		{"api key", APIKeyHeader, "k1", models.AuthMethodAPIKey},
		{"basic", "Authorization", "Basic " + base64.StdEncoding.EncodeToString([]byte("ops:pw")), models.AuthMethodBasic},
		{"bearer", "Authorization", "Bearer good-token", models.AuthMethodBearer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set(tc.header, tc.value)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var principal models.Principal
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
			assert.Equal(t, tc.method, principal.Method)
		})
	}
}

func TestAuthRejectsMissingOrInvalidCredentials(t *testing.T) {
	cases := []struct {
		name   string
		header string
		value  string
	}{
		{"missing", "", ""},
		{"bad key", APIKeyHeader, "nope"},
		{"bad basic", "Authorization", "Basic " + base64.StdEncoding.EncodeToString([]byte("ops:wrong"))},
		{"malformed basic", "Authorization", "Basic !!!"},
		{"bad bearer", "Authorization", "Bearer stale"},
		{"unknown scheme", "Authorization", "Digest abc"},
		{"no scheme", "Authorization", "token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var env response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, http.StatusUnauthorized, env.ErrorCode)
			assert.NotEmpty(t, env.ErrorDescription)
		})
	}
}
