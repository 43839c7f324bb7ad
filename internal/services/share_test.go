package services

import (
	"context"
	"testing"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestShareCreateRequiresAnalysis(t *testing.T) {
	svc := NewShareService(newTestDB(t))

	_, err := svc.Create(context.Background(), "1 Unknown Way")
	require.ErrorIs(t, err, ErrShareNotFound)

	_, err = svc.Create(context.Background(), "   ")
	require.ErrorIs(t, err, ErrAddressRequired)
}

func TestShareCreateAndGet(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.PropertyCache{
		NormalizedAddress: "7 oak ave",
		RawAddress:        "7 Oak Ave",
		KreitScore:        71,
		SimpleSummary:     "Simple.",
		ProSummary:        "Pro.",
		PremiumData:       datatypes.JSON(`{"rental_potential": "medium"}`),
		LastFetchedAt:     time.Now(),
	}).Error)

	svc := NewShareService(db)

	shared, err := svc.Create(context.Background(), "  7 OAK AVE ")
	require.NoError(t, err)
	require.Len(t, shared.ShareID, 32)
	require.Equal(t, "7 Oak Ave", shared.Address)
	require.NotNil(t, shared.ExpiresAt)

	got, err := svc.Get(context.Background(), shared.ShareID)
	require.NoError(t, err)
	require.Equal(t, 71, got.Score)
	require.Equal(t, "Simple.", got.SimpleSummary)
	require.Equal(t, "Pro.", got.ProSummary)
	require.JSONEq(t, `{"rental_potential": "medium"}`, string(got.PremiumData))
}

func TestShareGetUnknownID(t *testing.T) {
	svc := NewShareService(newTestDB(t))

	_, err := svc.Get(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef")
	require.ErrorIs(t, err, ErrShareNotFound)
}

func TestShareGetExpired(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.PropertyCache{
		NormalizedAddress: "3 short ln",
		RawAddress:        "3 Short Ln",
		KreitScore:        55,
		SimpleSummary:     "s",
		ProSummary:        "p",
		LastFetchedAt:     time.Now(),
	}).Error)

	svc := NewShareService(db)

	shared, err := svc.Create(context.Background(), "3 Short Ln")
	require.NoError(t, err)

	// jump past the 30-day expiry
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, err = svc.Get(context.Background(), shared.ShareID)
	require.ErrorIs(t, err, ErrShareNotFound)
}
