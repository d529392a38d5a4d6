package service

import (
	"context"

	"go.uber.org/zap"
)

// BookingSubmission carries the fields this core needs to accept a booking
// request; the business form itself lives elsewhere.
type BookingSubmission struct {
	Celebrity      string `json:"celebrity" binding:"required"`
	FullName       string `json:"fullName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	SubscriptionID string `json:"subscriptionId"`
	PrivacyConsent bool   `json:"privacyConsent"`
}

// BookingSink hands accepted submissions to whatever persists them.
// Persistence is an external collaborator, so the default sink only logs.
type BookingSink interface {
	Submit(ctx context.Context, reference string, submission BookingSubmission) error
}

type logBookingSink struct {
	logger *zap.Logger
}

func NewLogBookingSink(logger *zap.Logger) BookingSink {
	return &logBookingSink{logger: logger}
}

func (s *logBookingSink) Submit(_ context.Context, reference string, submission BookingSubmission) error {
	s.logger.Info("booking submission accepted",
		zap.String("reference", reference),
		zap.String("celebrity", submission.Celebrity),
		zap.String("email", submission.Email),
		zap.Bool("has_subscription", submission.SubscriptionID != ""))
	return nil
}
