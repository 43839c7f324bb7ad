package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newAuthApp(t *testing.T) (*fiber.App, *database.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupAuthRoutes(app.Group("/v1/auth"), db, cfg)

	users := app.Group("/v1/users", middleware.AuthRequired(cfg))
	SetupUserRoutes(users, db)

	return app, db
}

func TestSignupLoginAndMe(t *testing.T) {
	app, _ := newAuthApp(t)

	resp := postJSON(t, app, "/v1/auth/signup", map[string]string{
		"email":    "Investor@Example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	signup := decodeBody(t, resp)
	require.NotEmpty(t, signup["access_token"])
	require.Equal(t, "bearer", signup["token_type"])

	user := signup["user"].(map[string]any)
	// email is stored normalized
	require.Equal(t, "investor@example.com", user["email"])
	require.Equal(t, "free", user["subscription_tier"])
	require.True(t, strings.HasPrefix(user["kreit_id"].(string), "KREIT-"))

	resp = postJSON(t, app, "/v1/auth/login", map[string]string{
		"email":    "investor@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	login := decodeBody(t, resp)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login["access_token"].(string))

	meResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, meResp.StatusCode)

	me := decodeBody(t, meResp)
	require.Equal(t, "investor@example.com", me["email"])
	// password hash never serializes
	require.NotContains(t, me, "password_hash")
}

func TestSignupValidation(t *testing.T) {
	app, _ := newAuthApp(t)

	cases := []map[string]string{
		{"email": "", "password": "hunter2hunter2"},
		{"email": "not-an-email", "password": "hunter2hunter2"},
		{"email": "a@b.com", "password": "short"},
	}
	for _, payload := range cases {
		resp := postJSON(t, app, "/v1/auth/signup", payload)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "payload %v", payload)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app, _ := newAuthApp(t)

	payload := map[string]string{"email": "a@b.com", "password": "hunter2hunter2"}
	resp := postJSON(t, app, "/v1/auth/signup", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/v1/auth/signup", payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "email is already registered", decodeBody(t, resp)["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := newAuthApp(t)

	resp := postJSON(t, app, "/v1/auth/signup", map[string]string{
		"email": "a@b.com", "password": "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/v1/auth/login", map[string]string{
		"email": "a@b.com", "password": "wrong-password",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid email or password", decodeBody(t, resp)["error"])
}

func TestRefreshToken(t *testing.T) {
	app, _ := newAuthApp(t)

	resp := postJSON(t, app, "/v1/auth/signup", map[string]string{
		"email": "a@b.com", "password": "hunter2hunter2",
	})
	signup := decodeBody(t, resp)

	resp = postJSON(t, app, "/v1/auth/refresh", map[string]string{
		"refresh_token": signup["refresh_token"].(string),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, decodeBody(t, resp)["access_token"])

	// an access token is not accepted as a refresh token
	resp = postJSON(t, app, "/v1/auth/refresh", map[string]string{
		"refresh_token": signup["access_token"].(string),
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresAuth(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
