package service

import "errors"

var (
	ErrOTPCooldown  = errors.New("otp resend cooldown active")
	ErrOTPNotFound  = errors.New("otp not found or expired")
	ErrOTPInvalid   = errors.New("invalid otp")
	ErrOTPLockedOut = errors.New("otp verification locked out")
	ErrMailDelivery = errors.New("otp delivery failed")
)
