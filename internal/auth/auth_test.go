package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("admin")
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "pw"))
	assert.ErrorIs(t, ComparePassword(hash, "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, ComparePassword("", "pw"), ErrInvalidCredentials)

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()
	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken("admin")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/admin", NewAuthMiddleware(tm).Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(p.Username)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + token, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "malformed", header: token, status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer abc", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
