package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hybe/bookinghub/internal/service"
	"hybe/bookinghub/pkg/response"
)

type OTPHandler struct {
	otpService service.OTPService
}

func NewOTPHandler(otpService service.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

func (h *OTPHandler) Send(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "A valid email address is required.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	retryAfter, err := h.otpService.Send(c.Request.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPCooldown):
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.TooManyRequests(c, "Resend cooldown active",
				"Please wait before requesting another OTP.", retryAfter)
		default:
			response.InternalError(c, "Failed to send OTP.")
		}
		return
	}

	response.OK(c, "OTP sent successfully.")
}

func (h *OTPHandler) Verify(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "A valid email address and 6-digit OTP are required.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	err := h.otpService.Verify(c.Request.Context(), email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPLockedOut):
			response.Forbidden(c, "Too many failed attempts. Please request a new OTP.")
		case errors.Is(err, service.ErrOTPNotFound):
			response.BadRequest(c, "OTP not found or expired. Please request a new one.")
		case errors.Is(err, service.ErrOTPInvalid):
			response.BadRequest(c, "Invalid OTP.")
		default:
			response.InternalError(c, "Failed to verify OTP.")
		}
		return
	}

	response.OK(c, "OTP verified successfully.")
}
