package jwtx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_MapClaims(t *testing.T) {
	c := testContext(t)
	c.Set("user", jwt.MapClaims{"sub": float64(42), "role": "admin"})

	uid, err := UserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, int64(42), uid)

	role, err := RoleFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "admin", role)
}

func TestFromContext_Token(t *testing.T) {
	c := testContext(t)
	c.Set("user", &jwt.Token{Claims: jwt.MapClaims{"sub": float64(7), "role": "user"}})

	uid, err := UserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, int64(7), uid)

	role, err := RoleFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "user", role)
}

func TestFromContext_Missing(t *testing.T) {
	c := testContext(t)

	_, err := UserIDFromContext(c)
	require.Error(t, err)

	_, err = RoleFromContext(c)
	require.Error(t, err)
}
