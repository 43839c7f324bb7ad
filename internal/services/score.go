package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KrishanLala/KREIT-Score/internal/database"
	applogger "github.com/KrishanLala/KREIT-Score/internal/logger"
	"github.com/KrishanLala/KREIT-Score/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAddressRequired is returned for empty or whitespace-only addresses.
	ErrAddressRequired = errors.New("address is required")
	// ErrNotConfigured is returned when the property or AI provider
	// credentials are missing.
	ErrNotConfigured = errors.New("scoring providers are not configured")
)

const (
	// freshnessWindow is how long a cached analysis stays valid.
	freshnessWindow = 90 * 24 * time.Hour

	// maxPropertyJSONChars bounds the serialized provider payload sent
	// to the completion API.
	maxPropertyJSONChars = 12000

	defaultScore         = 60
	defaultSimpleSummary = "We could not generate a simple summary for this property."
	defaultProSummary    = "We could not generate a pro summary for this property."
)

const insightsSystemPrompt = `You are KREIT Score, an AI real-estate underwriter.
Return JSON with:
- "kreit_score": integer 0-100.
- "simple_summary": 3-4 short sentences, plain language.
- "pro_summary": 3-4 short sentences, professional tone using the same facts.
- "premium_data": object containing sections such as score_breakdown, rental_potential, appreciation_forecast, neighborhood_indicators, each with concise insights.`

// PropertyFetcher fetches raw property data for an address.
type PropertyFetcher interface {
	FetchByAddress(ctx context.Context, rawAddress string) (json.RawMessage, error)
}

// ChatCompleter requests a JSON-object completion.
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

type ScoreService struct {
	db         *database.DB
	properties PropertyFetcher
	ai         ChatCompleter
	log        *zap.SugaredLogger

	now func() time.Time
}

// NewScoreService wires the score pipeline. properties and ai may be nil
// when the corresponding credentials are missing; Analyze then fails with
// ErrNotConfigured on a cache miss.
func NewScoreService(db *database.DB, properties PropertyFetcher, ai ChatCompleter) *ScoreService {
	return &ScoreService{
		db:         db,
		properties: properties,
		ai:         ai,
		log:        applogger.GetLogger("score"),
		now:        time.Now,
	}
}

// ScoreResponse is the client-facing analysis result. PremiumData is the
// raw object only when the caller is entitled and data exists, JSON null
// otherwise.
type ScoreResponse struct {
	KreitScore     int             `json:"kreit_score"`
	SimpleSummary  string          `json:"simple_summary"`
	ProSummary     string          `json:"pro_summary"`
	PremiumData    json.RawMessage `json:"premium_data"`
	HasPremiumData bool            `json:"has_premium_data"`
}

// Insights is the parsed, defaulted completion output.
type Insights struct {
	KreitScore    int
	SimpleSummary string
	ProSummary    string
	PremiumData   json.RawMessage // nil when absent or empty
}

// Analyze runs the full score pipeline for one address. userID is nil for
// anonymous callers; premium is the caller's entitlement.
func (s *ScoreService) Analyze(ctx context.Context, rawAddress string, userID *uint, premium bool) (*ScoreResponse, error) {
	raw := strings.TrimSpace(rawAddress)
	normalized := NormalizeAddress(raw)
	if normalized == "" {
		return nil, ErrAddressRequired
	}

	var rec models.PropertyCache
	err := s.db.WithContext(ctx).
		Where("normalized_address = ?", normalized).
		First(&rec).Error
	cached := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// Cache reads are best-effort
		s.log.Warnf("cache lookup failed for %q: %v", normalized, err)
	}

	if !cached || !isFresh(rec.LastFetchedAt, s.now()) {
		if s.properties == nil || s.ai == nil {
			return nil, ErrNotConfigured
		}

		attomData, err := s.properties.FetchByAddress(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("property fetch failed: %w", err)
		}

		insights, err := s.generateInsights(ctx, attomData)
		if err != nil {
			return nil, err
		}

		rec = models.PropertyCache{
			NormalizedAddress: normalized,
			RawAddress:        raw,
			AttomData:         datatypes.JSON(attomData),
			KreitScore:        insights.KreitScore,
			SimpleSummary:     insights.SimpleSummary,
			ProSummary:        insights.ProSummary,
			PremiumData:       datatypes.JSON(insights.PremiumData),
			LastFetchedAt:     s.now(),
		}

		// Whole-row replace keyed on the normalized address; failures are
		// logged and the freshly computed result is still returned.
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_address"}},
			UpdateAll: true,
		}).Create(&rec).Error; err != nil {
			s.log.Warnf("cache upsert failed for %q: %v", normalized, err)
		}
	}

	// Every served analysis is recorded, cache hits included
	s.recordSearch(ctx, userID, raw, &rec)

	hasPremium := hasPremiumData(rec.PremiumData)

	resp := &ScoreResponse{
		KreitScore:     rec.KreitScore,
		SimpleSummary:  rec.SimpleSummary,
		ProSummary:     rec.ProSummary,
		HasPremiumData: hasPremium,
	}
	if premium && hasPremium {
		resp.PremiumData = json.RawMessage(rec.PremiumData)
	}

	return resp, nil
}

// generateInsights serializes the provider payload, bounds its size, and
// asks the completion API for a structured analysis.
func (s *ScoreService) generateInsights(ctx context.Context, attomData json.RawMessage) (*Insights, error) {
	truncated := truncateProperty(string(attomData), maxPropertyJSONChars)

	content, err := s.ai.CompleteJSON(ctx, insightsSystemPrompt, "Property data:\n"+truncated)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	return parseInsights(content)
}

// recordSearch logs the analysis in the searches table. Advisory write.
func (s *ScoreService) recordSearch(ctx context.Context, userID *uint, rawAddress string, rec *models.PropertyCache) {
	aiResponse, err := json.Marshal(map[string]any{
		"kreit_score":    rec.KreitScore,
		"simple_summary": rec.SimpleSummary,
		"pro_summary":    rec.ProSummary,
		"premium_data":   json.RawMessage(nullableJSON(rec.PremiumData)),
	})
	if err != nil {
		aiResponse = nil
	}

	score := rec.KreitScore
	search := models.Search{
		UserID:     userID,
		Address:    rawAddress,
		KreitScore: &score,
		AIResponse: datatypes.JSON(aiResponse),
	}
	if err := s.db.WithContext(ctx).Create(&search).Error; err != nil {
		s.log.Warnf("search record failed for %q: %v", rawAddress, err)
	}
}

// truncateProperty bounds the serialized payload without splitting a
// multi-byte rune at the cut.
func truncateProperty(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// NormalizeAddress lowercases and trims an address to form the cache key.
func NormalizeAddress(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// isFresh reports whether a cached record is still inside the freshness
// window. The boundary is inclusive; a zero timestamp is stale.
func isFresh(lastFetchedAt time.Time, now time.Time) bool {
	if lastFetchedAt.IsZero() {
		return false
	}
	return now.Sub(lastFetchedAt) <= freshnessWindow
}

// parseInsights parses the completion content. An unparseable document is
// a hard failure; individual missing or invalid fields fall back to fixed
// defaults instead.
func parseInsights(content string) (*Insights, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("unable to parse completion output: %w", err)
	}

	ins := &Insights{
		KreitScore:    defaultScore,
		SimpleSummary: defaultSimpleSummary,
		ProSummary:    defaultProSummary,
	}

	if raw, ok := fields["kreit_score"]; ok {
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			ins.KreitScore = clampScore(f)
		}
	}

	if s, ok := stringField(fields, "simple_summary"); ok {
		ins.SimpleSummary = s
	}
	if s, ok := stringField(fields, "pro_summary"); ok {
		ins.ProSummary = s
	}

	// An empty premium object is treated as no premium data
	if raw, ok := fields["premium_data"]; ok {
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil && len(obj) > 0 {
			ins.PremiumData = raw
		}
	}

	return ins, nil
}

// stringField extracts a non-empty trimmed string field. Empty-after-trim
// strings are treated as absent and defaulted by the caller.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// clampScore rounds and clamps an externally supplied score into [0, 100].
func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// hasPremiumData reports whether the stored premium payload is a non-null
// object with at least one key, independent of entitlement.
func hasPremiumData(data datatypes.JSON) bool {
	if len(data) == 0 {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	return len(obj) > 0
}

// nullableJSON maps an empty payload to an explicit JSON null.
func nullableJSON(data datatypes.JSON) []byte {
	if len(data) == 0 {
		return []byte("null")
	}
	return data
}
