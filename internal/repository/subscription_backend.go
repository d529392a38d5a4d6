package repository

import (
	"context"
	"errors"

	"hybe/bookinghub/internal/model"
)

// ErrBackendUnavailable marks a backend that could not answer at all, as
// opposed to one that answered "not provisioned".
var ErrBackendUnavailable = errors.New("subscription backend unavailable")

// TypeCount is one row of the per-tier membership census.
type TypeCount struct {
	SubscriptionType string `json:"subscription_type"`
	Count            int64  `json:"count"`
}

// SubscriptionBackend is one source of membership records. Backends answer
// authoritatively for ids they can reach; an id that is simply not
// provisioned is (nil, nil), never an error.
type SubscriptionBackend interface {
	Name() string
	Lookup(ctx context.Context, id string) (*model.Subscription, error)
	// RecordUsage bumps the usage counter and last-used timestamp. Callers
	// treat it as best-effort.
	RecordUsage(ctx context.Context, id string) error
	TypeCounts(ctx context.Context) ([]TypeCount, error)
	Ping(ctx context.Context) error
}
