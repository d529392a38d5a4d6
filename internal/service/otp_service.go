package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"hybe/bookinghub/internal/repository"
	"hybe/bookinghub/pkg/crypto"
)

const (
	otpCodeKeyPrefix     = "otp:code:"
	otpAttemptsKeyPrefix = "otp:attempts:"
	otpCooldownKeyPrefix = "otp:cooldown:"
)

// OTPConfig bounds the verification-code lifecycle.
type OTPConfig struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

// OTPService issues and verifies one-time codes per email identity. A code
// is consumable exactly once; a bounded number of wrong guesses invalidates
// it, and reissuing is gated by a resend cooldown.
type OTPService interface {
	// Send issues a fresh code and delivers it. On ErrOTPCooldown the
	// returned retryAfter holds the remaining cooldown in seconds.
	Send(ctx context.Context, email string) (retryAfter int, err error)
	Verify(ctx context.Context, email, code string) error
}

type otpService struct {
	store  repository.KVStore
	sender MailSender
	cfg    OTPConfig
	logger *zap.Logger
}

func NewOTPService(store repository.KVStore, sender MailSender, cfg OTPConfig, logger *zap.Logger) OTPService {
	return &otpService{store: store, sender: sender, cfg: cfg, logger: logger}
}

func (s *otpService) Send(ctx context.Context, email string) (int, error) {
	cooldownKey := otpCooldownKeyPrefix + email

	raw, err := s.store.Get(ctx, cooldownKey)
	if err != nil {
		// A degraded store must not block sends; the rate limiter still
		// bounds abuse.
		s.logger.Warn("otp cooldown check failed", zap.Error(err))
	}
	if raw != nil {
		until, parseErr := strconv.ParseInt(string(raw), 10, 64)
		if parseErr == nil {
			remaining := time.Until(time.UnixMilli(until))
			if remaining > 0 {
				return int(remaining.Round(time.Second).Seconds()), ErrOTPCooldown
			}
		}
	}

	code, err := crypto.GenerateOTPCode()
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := crypto.HashCode(code)
	if err != nil {
		return 0, fmt.Errorf("hash otp: %w", err)
	}

	// A new code supersedes the old one and wipes its failure history.
	if err := s.store.Set(ctx, otpCodeKeyPrefix+email, []byte(hash), s.cfg.CodeTTL); err != nil {
		return 0, fmt.Errorf("store otp: %w", err)
	}
	if err := s.store.Delete(ctx, otpAttemptsKeyPrefix+email); err != nil {
		s.logger.Warn("otp attempt counter reset failed", zap.Error(err))
	}

	if err := s.sender.SendOTP(ctx, email, code, s.cfg.CodeTTL); err != nil {
		s.logger.Error("otp delivery failed", zap.String("email", email), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	until := time.Now().Add(s.cfg.ResendCooldown).UnixMilli()
	if err := s.store.Set(ctx, cooldownKey, []byte(strconv.FormatInt(until, 10)), s.cfg.ResendCooldown); err != nil {
		s.logger.Warn("otp cooldown arm failed", zap.Error(err))
	}

	return 0, nil
}

func (s *otpService) Verify(ctx context.Context, email, candidate string) error {
	attemptsKey := otpAttemptsKeyPrefix + email
	codeKey := otpCodeKeyPrefix + email

	raw, err := s.store.Get(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("otp attempt counter read failed", zap.Error(err))
	}
	if raw != nil {
		attempts, parseErr := strconv.ParseInt(string(raw), 10, 64)
		if parseErr == nil && attempts >= int64(s.cfg.MaxAttempts) {
			// Locked out: burn the live code so only a fresh send (after
			// any cooldown) can recover the identity.
			if err := s.store.Delete(ctx, codeKey); err != nil {
				s.logger.Warn("otp code invalidation failed", zap.Error(err))
			}
			return ErrOTPLockedOut
		}
	}

	hash, err := s.store.Get(ctx, codeKey)
	if err != nil {
		s.logger.Warn("otp code read failed", zap.Error(err))
		return ErrOTPNotFound
	}
	if hash == nil {
		return ErrOTPNotFound
	}

	if !crypto.CheckCode(candidate, string(hash)) {
		// The counter expires alongside the code so a stale failure history
		// cannot outlive the code it belongs to.
		if _, _, err := s.store.IncrBy(ctx, attemptsKey, 1, s.cfg.CodeTTL); err != nil {
			s.logger.Warn("otp attempt counter bump failed", zap.Error(err))
		}
		return ErrOTPInvalid
	}

	// Success is terminal: drop both keys so the code cannot be replayed.
	if err := s.store.Delete(ctx, codeKey); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if err := s.store.Delete(ctx, attemptsKey); err != nil {
		s.logger.Warn("otp attempt counter cleanup failed", zap.Error(err))
	}
	return nil
}
