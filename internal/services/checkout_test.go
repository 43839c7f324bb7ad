package services

import (
	"context"
	"testing"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	"github.com/KrishanLala/KREIT-Score/pkg/stripe"
	"github.com/stretchr/testify/require"
)

type stubCheckoutCreator struct {
	params  stripe.CheckoutParams
	session *stripe.CheckoutSession
	err     error
}

func (s *stubCheckoutCreator) CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	s.params = params
	return s.session, s.err
}

func TestCheckoutUnconfigured(t *testing.T) {
	svc := NewCheckoutService(nil, &config.Config{StripePriceID: "price_123"})
	_, err := svc.CreateSession(context.Background(), 1, "https://kreitscore.com")
	require.ErrorIs(t, err, ErrCheckoutNotConfigured)

	svc = NewCheckoutService(&stubCheckoutCreator{}, &config.Config{})
	_, err = svc.CreateSession(context.Background(), 1, "https://kreitscore.com")
	require.ErrorIs(t, err, ErrCheckoutNotConfigured)
}

func TestCheckoutCreateSession(t *testing.T) {
	creator := &stubCheckoutCreator{
		session: &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"},
	}
	svc := NewCheckoutService(creator, &config.Config{StripePriceID: "price_123"})

	url, err := svc.CreateSession(context.Background(), 42, "https://kreitscore.com")
	require.NoError(t, err)
	require.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", url)

	require.Equal(t, "price_123", creator.params.PriceID)
	require.Equal(t, "42", creator.params.ClientReferenceID)
	require.Equal(t, "https://kreitscore.com/account?session_id={CHECKOUT_SESSION_ID}", creator.params.SuccessURL)
	require.Equal(t, "https://kreitscore.com?checkout=cancelled", creator.params.CancelURL)
	require.Equal(t, map[string]string{"user_id": "42"}, creator.params.Metadata)
}

func TestCheckoutOriginFallback(t *testing.T) {
	creator := &stubCheckoutCreator{
		session: &stripe.CheckoutSession{ID: "cs_test_2", URL: "https://checkout.stripe.com/pay/cs_test_2"},
	}
	cfg := &config.Config{StripePriceID: "price_123", ServerHost: "https://kreitscore.com"}
	svc := NewCheckoutService(creator, cfg)

	_, err := svc.CreateSession(context.Background(), 7, "")
	require.NoError(t, err)
	require.Equal(t, "https://kreitscore.com/account?session_id={CHECKOUT_SESSION_ID}", creator.params.SuccessURL)
}

func TestCheckoutMissingURL(t *testing.T) {
	creator := &stubCheckoutCreator{session: &stripe.CheckoutSession{ID: "cs_test_3"}}
	svc := NewCheckoutService(creator, &config.Config{StripePriceID: "price_123"})

	_, err := svc.CreateSession(context.Background(), 1, "https://kreitscore.com")
	require.ErrorIs(t, err, ErrNoCheckoutURL)
}
