package model

import (
	"time"

	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Subscription{}); err != nil {
		return err
	}

	// Covering index for the hot validation query.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_subscription_ids_active " +
			"ON subscription_ids (subscription_id, is_active)",
	).Error; err != nil {
		return err
	}

	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_subscription_ids_expires " +
			"ON subscription_ids (expires_at)",
	).Error
}

// SeedSubscriptions inserts the sample membership roster when the table is
// empty. Premium memberships run a year, elite 180 days, standard never
// expires.
func SeedSubscriptions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Subscription{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	expiry := func(tier SubscriptionTier) *time.Time {
		switch tier {
		case TierPremium:
			t := now.AddDate(1, 0, 0)
			return &t
		case TierElite:
			t := now.AddDate(0, 0, 180)
			return &t
		default:
			return nil
		}
	}

	seed := []struct {
		id   string
		name string
		tier SubscriptionTier
	}{
		{"HYBABC1234567", "Kim Taehyung", TierPremium},
		{"HYBGHI5555555", "Jeon Jungkook", TierPremium},
		{"HYBPQR8888888", "Jung Hoseok", TierPremium},
		{"HYBAAA6666666", "Park Chaeyoung", TierPremium},
		{"HYBDDD1234321", "Hanni Pham", TierPremium},
		{"HYBDEF9876543", "Park Jimin", TierElite},
		{"HYBJKL7777777", "Kim Namjoon", TierElite},
		{"HYBSTU1111111", "Kim Seokjin", TierElite},
		{"HYBYZZ4444444", "Kim Jennie", TierElite},
		{"HYBCCC0000000", "Minji Kim", TierElite},
		{"HYBFFF9012345", "Haerin Kang", TierElite},
		{"B07200EF6667", "Radhika Verma", TierStandard},
		{"HYB10250GB0680", "Elisabete Magalhaes", TierStandard},
		{"HYB59371A4C9F2", "MEGHANA VAISHNAVI", TierStandard},
	}

	subs := make([]Subscription, 0, len(seed))
	for _, s := range seed {
		subs = append(subs, Subscription{
			SubscriptionID: s.id,
			UserName:       s.name,
			Type:           s.tier,
			IsActive:       true,
			ExpiresAt:      expiry(s.tier),
		})
	}
	return db.Create(&subs).Error
}
