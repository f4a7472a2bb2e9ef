package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testCfg = JWTConfig{
	Issuer:     "ziva",
	SigningKey: []byte("0123456789abcdef0123456789abcdef"),
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, token string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
	})
	return rec, h(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token, err := SignToken(testCfg, "patient-1", []string{RolePatient}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	rec, err := doRequest(t, JWTMiddleware(testCfg), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "patient-1" {
		t.Errorf("expected subject patient-1, got %q", rec.Body.String())
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, err := doRequest(t, JWTMiddleware(testCfg), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token, err := SignToken(testCfg, "patient-1", []string{RolePatient}, -time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	_, err = doRequest(t, JWTMiddleware(testCfg), token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	other := JWTConfig{Issuer: "ziva", SigningKey: []byte("ffffffffffffffffffffffffffffffff")}
	token, err := SignToken(other, "patient-1", []string{RolePatient}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	_, err = doRequest(t, JWTMiddleware(testCfg), token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %v", err)
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	other := JWTConfig{Issuer: "someone-else", SigningKey: testCfg.SigningKey}
	token, err := SignToken(other, "patient-1", []string{RolePatient}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	_, err = doRequest(t, JWTMiddleware(testCfg), token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong issuer, got %v", err)
	}
}

func TestDevAuthMiddleware_GrantsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := DevAuthMiddleware()(func(c echo.Context) error {
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != RoleAdmin {
			t.Errorf("expected admin role, got %v", roles)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = rec
}

func requireRoleRequest(t *testing.T, roles []string, guard echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "user-1", roles)
	h := guard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return h(c)
}

func TestRequireRole_Allows(t *testing.T) {
	if err := requireRoleRequest(t, []string{RoleSponsor}, RequireRole(RoleSponsor)); err != nil {
		t.Errorf("sponsor should access sponsor route: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := requireRoleRequest(t, []string{RoleAdmin}, RequireRole(RolePatient)); err != nil {
		t.Errorf("admin should access any route: %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	err := requireRoleRequest(t, []string{RolePatient}, RequireRole(RoleCenter))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}
