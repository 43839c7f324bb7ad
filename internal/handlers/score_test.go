package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/models"
	authpkg "github.com/KrishanLala/KREIT-Score/pkg/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	db := &database.DB{DB: gdb}
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:              "test-secret",
		JWTAccessTokenExpireMin:   15,
		JWTRefreshTokenExpireDays: 7,
	}
}

type stubFetcher struct {
	payload json.RawMessage
	err     error
}

func (s *stubFetcher) FetchByAddress(ctx context.Context, rawAddress string) (json.RawMessage, error) {
	return s.payload, s.err
}

type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return s.content, s.err
}

func newScoreApp(t *testing.T, db *database.DB, fetcher *stubFetcher, completer *stubCompleter) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h := NewScoreHandler(db, fetcher, completer)
	SetupScoreRoutes(app.Group("/v1"), testConfig(), h)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestMockScoreMissingAddress(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	for _, payload := range []any{
		map[string]string{},
		map[string]string{"address": "   "},
	} {
		resp := postJSON(t, app, "/v1/score", payload)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		require.Equal(t, "Address is required to calculate a KREIT Score.", body["error"])
	}
}

func TestMockScoreMalformedBody(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMockScoreDeterministic(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	first := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "123 Main St"}))
	second := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "123 Main St"}))

	require.Equal(t, first["score"], second["score"])
	require.Equal(t, "simple", first["plan"])
	require.Equal(t, "123 Main St", first["address"])

	score := first["score"].(float64)
	require.GreaterOrEqual(t, score, float64(300))
	require.LessOrEqual(t, score, float64(900))
}

func TestMockScoreTrimsAddress(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	trimmed := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "123 Main St"}))
	padded := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "  123 Main St  "}))

	// padding never changes the score or the echoed address
	require.Equal(t, trimmed["score"], padded["score"])
	require.Equal(t, "123 Main St", padded["address"])
}

func TestMockScoreProPlan(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	simple := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "123 Main St"}))
	pro := decodeBody(t, postJSON(t, app, "/v1/score", map[string]string{"address": "123 Main St", "plan": "pro"}))

	require.Equal(t, "pro", pro["plan"])
	require.Equal(t, simple["score"].(float64)+60, pro["score"].(float64))
}

func TestAnalyzeMissingAddress(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	resp := postJSON(t, app, "/v1/kreit-score", map[string]string{"address": ""})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Address is required.", decodeBody(t, resp)["error"])
}

func TestAnalyzeFullFlow(t *testing.T) {
	db := newTestDB(t)
	fetcher := &stubFetcher{payload: json.RawMessage(`{"building": {"size": 900}}`)}
	completer := &stubCompleter{content: `{
		"kreit_score": 74,
		"simple_summary": "Decent starter home.",
		"pro_summary": "Stable submarket.",
		"premium_data": {"score_breakdown": {"location": 7}}
	}`}
	app := newScoreApp(t, db, fetcher, completer)

	resp := postJSON(t, app, "/v1/kreit-score", map[string]string{"address": "123 Main St"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, float64(74), body["kreit_score"])
	require.Equal(t, "Decent starter home.", body["simple_summary"])
	require.Equal(t, "Stable submarket.", body["pro_summary"])
	require.Equal(t, true, body["has_premium_data"])
	// anonymous caller never sees the premium payload
	require.Nil(t, body["premium_data"])
}

func TestAnalyzePremiumUserSeesPremiumData(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.User{
		KreitID:          "KREIT-TESTUSER",
		Email:            "premium@example.com",
		PasswordHash:     "x",
		SubscriptionTier: models.TierPremium,
		Role:             "user",
	}).Error)
	var user models.User
	require.NoError(t, db.Where("email = ?", "premium@example.com").First(&user).Error)

	require.NoError(t, db.Create(&models.PropertyCache{
		NormalizedAddress: "9 bay rd",
		RawAddress:        "9 Bay Rd",
		KreitScore:        64,
		SimpleSummary:     "s",
		ProSummary:        "p",
		PremiumData:       datatypes.JSON(`{"score_breakdown": {"location": 8}}`),
		LastFetchedAt:     time.Now(),
	}).Error)

	app := newScoreApp(t, db, &stubFetcher{}, &stubCompleter{})
	cfg := testConfig()
	token, _, err := authpkg.GenerateTokenPair(user.ID, cfg.JWTSecretKey,
		cfg.JWTAccessTokenExpireMin, cfg.JWTRefreshTokenExpireDays)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]string{"address": "9 Bay Rd"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/kreit-score", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["has_premium_data"])
	require.NotNil(t, body["premium_data"])
}

func TestAnalyzeProviderError(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{err: context.DeadlineExceeded}, &stubCompleter{})

	resp := postJSON(t, app, "/v1/kreit-score", map[string]string{"address": "123 Main St"})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Unable to generate KREIT Score at this time.", decodeBody(t, resp)["error"])
}

func TestShareFlow(t *testing.T) {
	db := newTestDB(t)
	app := newScoreApp(t, db, &stubFetcher{}, &stubCompleter{})

	// nothing analyzed yet
	resp := postJSON(t, app, "/v1/kreit-score/share", map[string]string{"address": "7 Oak Ave"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No analysis found for this address.", decodeBody(t, resp)["error"])

	require.NoError(t, db.Create(&models.PropertyCache{
		NormalizedAddress: "7 oak ave",
		RawAddress:        "7 Oak Ave",
		KreitScore:        71,
		SimpleSummary:     "Simple.",
		ProSummary:        "Pro.",
		PremiumData:       datatypes.JSON(`{"rental_potential": "medium"}`),
		LastFetchedAt:     time.Now(),
	}).Error)

	resp = postJSON(t, app, "/v1/kreit-score/share", map[string]string{"address": "7 Oak Ave"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	shareID, ok := body["share_id"].(string)
	require.True(t, ok)
	require.Len(t, shareID, 32)
	require.Equal(t, "/v1/shared/"+shareID, body["url"])

	req := httptest.NewRequest(http.MethodGet, "/v1/shared/"+shareID, nil)
	getResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	snapshot := decodeBody(t, getResp)
	require.Equal(t, "7 Oak Ave", snapshot["address"])
	require.Equal(t, float64(71), snapshot["score"])
}

func TestGetSharedUnknown(t *testing.T) {
	app := newScoreApp(t, newTestDB(t), &stubFetcher{}, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/v1/shared/deadbeefdeadbeefdeadbeefdeadbeef", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Shared score not found.", decodeBody(t, resp)["error"])
}
