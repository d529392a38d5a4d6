package model

import "time"

type SubscriptionTier string

const (
	TierPremium  SubscriptionTier = "premium"
	TierElite    SubscriptionTier = "elite"
	TierStandard SubscriptionTier = "standard"
)

// Subscription is a provisioned membership record. Records are created by
// out-of-band provisioning (seed data or admin tooling); this service only
// reads them and touches usage counters.
type Subscription struct {
	ID             uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriptionID string           `gorm:"type:varchar(32);uniqueIndex;not null" json:"subscription_id"`
	UserName       string           `gorm:"type:varchar(255);not null" json:"user_name"`
	Type           SubscriptionTier `gorm:"column:subscription_type;type:varchar(16);not null" json:"subscription_type"`
	IsActive       bool             `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	LastUsedAt     *time.Time       `json:"last_used_at,omitempty"`
	UsageCount     int              `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription_ids" }

// IsUsable reports whether the record passes the domain rule every backend
// enforces: active and either non-expiring or not yet expired.
func (s *Subscription) IsUsable(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
		return false
	}
	return true
}
