package repository

import (
	"context"

	"go.uber.org/zap"

	"hybe/bookinghub/internal/model"
)

// LookupChain consults its backends in priority order and returns the first
// authoritative answer: a reachable backend's result counts even when it is
// "not provisioned", while an unreachable backend is skipped. Only when every
// backend is unreachable does the chain itself report ErrBackendUnavailable.
type LookupChain struct {
	backends []SubscriptionBackend
	logger   *zap.Logger
}

func NewLookupChain(logger *zap.Logger, backends ...SubscriptionBackend) *LookupChain {
	return &LookupChain{backends: backends, logger: logger}
}

// BackendNames lists the configured backends in priority order.
func (c *LookupChain) BackendNames() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

func (c *LookupChain) Lookup(ctx context.Context, id string) (*model.Subscription, error) {
	if len(c.backends) == 0 {
		return nil, ErrBackendUnavailable
	}
	for _, backend := range c.backends {
		sub, err := backend.Lookup(ctx, id)
		if err != nil {
			c.logger.Warn("subscription backend unreachable, trying next",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			continue
		}
		return sub, nil
	}
	return nil, ErrBackendUnavailable
}

// RecordUsage touches the record on the first backend that accepts the
// write. Callers run it fire-and-forget.
func (c *LookupChain) RecordUsage(ctx context.Context, id string) error {
	var lastErr error = ErrBackendUnavailable
	for _, backend := range c.backends {
		if err := backend.RecordUsage(ctx, id); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (c *LookupChain) TypeCounts(ctx context.Context) ([]TypeCount, error) {
	if len(c.backends) == 0 {
		return nil, ErrBackendUnavailable
	}
	var lastErr error = ErrBackendUnavailable
	for _, backend := range c.backends {
		counts, err := backend.TypeCounts(ctx)
		if err != nil {
			c.logger.Warn("subscription backend census failed, trying next",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			lastErr = err
			continue
		}
		return counts, nil
	}
	return nil, lastErr
}

// BackendHealth is one backend's reachability as seen right now.
type BackendHealth struct {
	Name      string `json:"name"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

func (c *LookupChain) Health(ctx context.Context) []BackendHealth {
	health := make([]BackendHealth, 0, len(c.backends))
	for _, backend := range c.backends {
		h := BackendHealth{Name: backend.Name(), Reachable: true}
		if err := backend.Ping(ctx); err != nil {
			h.Reachable = false
			h.Error = err.Error()
		}
		health = append(health, h)
	}
	return health
}
