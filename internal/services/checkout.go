package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	applogger "github.com/KrishanLala/KREIT-Score/internal/logger"
	"github.com/KrishanLala/KREIT-Score/pkg/stripe"
	"go.uber.org/zap"
)

var (
	// ErrCheckoutNotConfigured is returned when the payment credentials
	// are missing.
	ErrCheckoutNotConfigured = errors.New("payment provider is not configured")
	// ErrNoCheckoutURL is returned when the payment provider created a
	// session without a redirect URL.
	ErrNoCheckoutURL = errors.New("payment provider returned no checkout URL")
)

// CheckoutSessionCreator creates a hosted checkout session.
type CheckoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error)
}

type CheckoutService struct {
	payments CheckoutSessionCreator
	cfg      *config.Config
	log      *zap.SugaredLogger
}

// NewCheckoutService wires the checkout flow. payments may be nil when the
// Stripe secret key is missing; CreateSession then fails with
// ErrCheckoutNotConfigured.
func NewCheckoutService(payments CheckoutSessionCreator, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		payments: payments,
		cfg:      cfg,
		log:      applogger.GetLogger("checkout"),
	}
}

// CreateSession starts a subscription checkout for the user and returns
// the hosted checkout URL. origin is the base URL return links are built
// from.
func (s *CheckoutService) CreateSession(ctx context.Context, userID uint, origin string) (string, error) {
	if s.payments == nil || s.cfg.StripePriceID == "" {
		return "", ErrCheckoutNotConfigured
	}

	if origin == "" {
		origin = s.cfg.ServerHost
	}

	userRef := strconv.FormatUint(uint64(userID), 10)
	session, err := s.payments.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		PriceID:           s.cfg.StripePriceID,
		ClientReferenceID: userRef,
		SuccessURL:        origin + "/account?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         origin + "?checkout=cancelled",
		Metadata:          map[string]string{"user_id": userRef},
	})
	if err != nil {
		return "", fmt.Errorf("checkout session creation failed: %w", err)
	}

	if session.URL == "" {
		return "", ErrNoCheckoutURL
	}

	return session.URL, nil
}
