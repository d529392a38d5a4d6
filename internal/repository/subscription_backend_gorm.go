package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hybe/bookinghub/internal/model"
)

// gormSubscriptionBackend serves both SQL backends: the durable Postgres
// store and the embedded SQLite store differ only in the *gorm.DB handed in.
type gormSubscriptionBackend struct {
	db   *gorm.DB
	name string
}

func NewPGSubscriptionBackend(db *gorm.DB) SubscriptionBackend {
	return &gormSubscriptionBackend{db: db, name: "postgres"}
}

func NewSQLiteSubscriptionBackend(db *gorm.DB) SubscriptionBackend {
	return &gormSubscriptionBackend{db: db, name: "sqlite"}
}

func (r *gormSubscriptionBackend) Name() string { return r.name }

func (r *gormSubscriptionBackend) Lookup(ctx context.Context, id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", id).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, r.name, err)
	}
	return &sub, nil
}

func (r *gormSubscriptionBackend) RecordUsage(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("subscription_id = ?", id).
		UpdateColumns(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": time.Now(),
		}).Error
}

func (r *gormSubscriptionBackend) TypeCounts(ctx context.Context) ([]TypeCount, error) {
	var counts []TypeCount
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Select("subscription_type, COUNT(*) as count").
		Where("is_active = ?", true).
		Group("subscription_type").
		Order("subscription_type").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, r.name, err)
	}
	return counts, nil
}

func (r *gormSubscriptionBackend) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
