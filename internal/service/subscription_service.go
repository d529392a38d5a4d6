package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hybe/bookinghub/internal/model"
	"hybe/bookinghub/internal/repository"
)

const subscriptionCacheKeyPrefix = "subscription:"

// One combined message for unknown, inactive and expired ids so responses do
// not reveal which ids are provisioned.
const (
	msgInvalidFormat = "Invalid subscription ID format. Please check your ID and try again."
	msgNotFound      = "Subscription ID not found, inactive, or expired. Please check your ID and try again."
)

// ValidationResult is the cached outcome of a membership check. It is a
// derived value keyed by normalized id, not the record of truth.
type ValidationResult struct {
	IsValid          bool   `json:"isValid"`
	SubscriptionType string `json:"subscriptionType,omitempty"`
	UserName         string `json:"userName,omitempty"`
	Message          string `json:"message"`
}

// MembershipChain is the slice of the lookup chain the validator needs.
type MembershipChain interface {
	Lookup(ctx context.Context, id string) (*model.Subscription, error)
	RecordUsage(ctx context.Context, id string) error
	TypeCounts(ctx context.Context) ([]repository.TypeCount, error)
}

// SubscriptionConfig tunes the validator. Negative results get a short TTL
// so a transient outage or a typo cannot pollute the cache for long;
// positive results are safe to keep longer.
type SubscriptionConfig struct {
	PositiveCacheTTL time.Duration
	NegativeCacheTTL time.Duration
	MinIDLength      int
	MaxIDLength      int
	UsageTimeout     time.Duration
}

type SubscriptionService interface {
	Validate(ctx context.Context, rawID string) ValidationResult
	TypeCounts(ctx context.Context) ([]repository.TypeCount, int64, error)
}

type subscriptionService struct {
	store  repository.KVStore
	chain  MembershipChain
	cfg    SubscriptionConfig
	logger *zap.Logger
	group  singleflight.Group
}

func NewSubscriptionService(store repository.KVStore, chain MembershipChain, cfg SubscriptionConfig, logger *zap.Logger) SubscriptionService {
	if cfg.UsageTimeout <= 0 {
		cfg.UsageTimeout = 5 * time.Second
	}
	return &subscriptionService{store: store, chain: chain, cfg: cfg, logger: logger}
}

// normalizeID trims and upper-cases an id, returning "" when any character
// falls outside [A-Z0-9].
func normalizeID(raw string) string {
	id := strings.ToUpper(strings.TrimSpace(raw))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return id
}

func (s *subscriptionService) Validate(ctx context.Context, rawID string) ValidationResult {
	id := normalizeID(rawID)
	if id == "" || len(id) < s.cfg.MinIDLength || len(id) > s.cfg.MaxIDLength {
		return ValidationResult{IsValid: false, Message: msgInvalidFormat}
	}

	cacheKey := subscriptionCacheKeyPrefix + id
	if raw, err := s.store.Get(ctx, cacheKey); err != nil {
		s.logger.Warn("validation cache read failed", zap.Error(err))
	} else if raw != nil {
		var cached ValidationResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
		s.logger.Warn("discarding undecodable validation cache entry", zap.String("key", cacheKey))
	}

	// Concurrent misses for the same id collapse into one chain consult.
	result, _, _ := s.group.Do(id, func() (interface{}, error) {
		return s.lookupAndCache(ctx, id, cacheKey), nil
	})
	return result.(ValidationResult)
}

func (s *subscriptionService) lookupAndCache(ctx context.Context, id, cacheKey string) ValidationResult {
	sub, err := s.chain.Lookup(ctx, id)
	if err != nil {
		s.logger.Error("all subscription backends unavailable", zap.Error(err))
		// Indistinguishable from not-found on purpose, and short-lived so
		// the outage does not linger in the cache.
		negative := ValidationResult{IsValid: false, Message: msgNotFound}
		s.cache(ctx, cacheKey, negative, s.cfg.NegativeCacheTTL)
		return negative
	}

	if sub == nil || !sub.IsUsable(time.Now()) {
		negative := ValidationResult{IsValid: false, Message: msgNotFound}
		s.cache(ctx, cacheKey, negative, s.cfg.NegativeCacheTTL)
		return negative
	}

	positive := ValidationResult{
		IsValid:          true,
		SubscriptionType: string(sub.Type),
		UserName:         sub.UserName,
		Message:          "Valid " + string(sub.Type) + " subscription for " + sub.UserName,
	}
	s.cache(ctx, cacheKey, positive, s.cfg.PositiveCacheTTL)

	go s.recordUsage(id)

	return positive
}

func (s *subscriptionService) cache(ctx context.Context, key string, result ValidationResult, ttl time.Duration) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("validation result marshal failed", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("validation cache write failed", zap.Error(err))
	}
}

func (s *subscriptionService) recordUsage(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.UsageTimeout)
	defer cancel()
	if err := s.chain.RecordUsage(ctx, id); err != nil {
		s.logger.Warn("usage recording failed", zap.String("subscription_id", id), zap.Error(err))
	}
}

func (s *subscriptionService) TypeCounts(ctx context.Context) ([]repository.TypeCount, int64, error) {
	counts, err := s.chain.TypeCounts(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	return counts, total, nil
}
