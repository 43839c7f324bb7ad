package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrShareNotFound is returned for unknown or expired share ids and for
// share requests against never-analyzed addresses.
var ErrShareNotFound = errors.New("shared score not found")

const shareExpiry = 30 * 24 * time.Hour

type ShareService struct {
	db *database.DB

	now func() time.Time
}

func NewShareService(db *database.DB) *ShareService {
	return &ShareService{db: db, now: time.Now}
}

// Create snapshots the cached analysis for an address under a new opaque
// share id. The address must have been analyzed before.
func (s *ShareService) Create(ctx context.Context, rawAddress string) (*models.SharedScore, error) {
	normalized := NormalizeAddress(rawAddress)
	if normalized == "" {
		return nil, ErrAddressRequired
	}

	var rec models.PropertyCache
	err := s.db.WithContext(ctx).
		Where("normalized_address = ?", normalized).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	expiresAt := s.now().Add(shareExpiry)
	shared := models.SharedScore{
		ShareID:       newShareID(),
		Address:       rec.RawAddress,
		Score:         rec.KreitScore,
		SimpleSummary: rec.SimpleSummary,
		ProSummary:    rec.ProSummary,
		PremiumData:   rec.PremiumData,
		ExpiresAt:     &expiresAt,
	}

	if err := s.db.WithContext(ctx).Create(&shared).Error; err != nil {
		return nil, err
	}

	return &shared, nil
}

// Get returns a shared snapshot by id; expired snapshots are not found.
func (s *ShareService) Get(ctx context.Context, shareID string) (*models.SharedScore, error) {
	var shared models.SharedScore
	err := s.db.WithContext(ctx).
		Where("share_id = ?", shareID).
		First(&shared).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	if shared.ExpiresAt != nil && s.now().After(*shared.ExpiresAt) {
		return nil, ErrShareNotFound
	}

	return &shared, nil
}

// newShareID returns a 32-char hex id
func newShareID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
