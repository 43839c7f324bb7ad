package models

import (
	"time"
)

// Subscription tiers
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// User represents the users table
// DB: users
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	KreitID          string    `gorm:"column:kreit_id;size:20;not null;uniqueIndex:users_kreit_id_key" json:"kreit_id"`
	Email            string    `gorm:"column:email;size:255;not null;uniqueIndex:users_email_key" json:"email"`
	PasswordHash     string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	FirstName        *string   `gorm:"column:first_name;size:100" json:"first_name,omitempty"`
	LastName         *string   `gorm:"column:last_name;size:100" json:"last_name,omitempty"`
	SubscriptionTier string    `gorm:"column:subscription_tier;size:50;default:free" json:"subscription_tier"`
	Role             string    `gorm:"column:role;size:20;not null;default:user" json:"role"`
	IsAdmin          bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Subscriptions []Subscription `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsPremium reports whether the user is entitled to premium content
func (u *User) IsPremium() bool {
	return u.SubscriptionTier != "" && u.SubscriptionTier != TierFree
}

// Subscription represents a Stripe-backed subscription
// DB: subscriptions
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	StripeCustomerID     *string    `gorm:"column:stripe_customer_id;size:255" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `gorm:"column:stripe_subscription_id;size:255" json:"stripe_subscription_id,omitempty"`
	Tier                 string     `gorm:"column:tier;size:50;not null" json:"tier"`
	AmountCents          int        `gorm:"column:amount_cents;not null" json:"amount_cents"`
	BillingCycleStart    *time.Time `gorm:"column:billing_cycle_start" json:"billing_cycle_start,omitempty"`
	BillingCycleEnd      *time.Time `gorm:"column:billing_cycle_end" json:"billing_cycle_end,omitempty"`
	Status               string     `gorm:"column:status;size:50;default:active" json:"status"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
