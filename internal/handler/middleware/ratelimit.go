package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hybe/bookinghub/internal/config"
	"hybe/bookinghub/internal/repository"
	"hybe/bookinghub/pkg/response"
)

// Policy configures one fixed-window rate limit. Fixed windows admit a burst
// of up to 2x MaxRequests straddling a window boundary; that relaxation is
// accepted in exchange for a single atomic store operation per request.
type Policy struct {
	Name           string
	Window         time.Duration
	MaxRequests    int64
	Message        string
	SkipSuccessful bool
	KeyFunc        func(c *gin.Context) string
}

func clientIPKey(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "anonymous"
}

// clientIPAndEmailKey scopes the limit to caller+identity so one IP cannot
// burn the quota of every mailbox at once, and vice versa.
func clientIPAndEmailKey(c *gin.Context) string {
	email := "anonymous"
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			var body struct {
				Email string `json:"email"`
			}
			if json.Unmarshal(raw, &body) == nil && body.Email != "" {
				email = body.Email
			}
		}
	}
	return clientIPKey(c) + ":" + email
}

// Preset policies carried over from the original deployment.

func GeneralPolicy(cfg config.PolicyConfig) Policy {
	return Policy{
		Name:        "general",
		Window:      cfg.Window,
		MaxRequests: cfg.MaxRequests,
		Message:     "Too many requests from this IP, please try again later.",
		KeyFunc:     clientIPKey,
	}
}

func ValidationPolicy(cfg config.PolicyConfig) Policy {
	return Policy{
		Name:           "validation",
		Window:         cfg.Window,
		MaxRequests:    cfg.MaxRequests,
		Message:        "Too many subscription validation attempts, please try again later.",
		SkipSuccessful: true,
		KeyFunc:        clientIPKey,
	}
}

func OTPPolicy(cfg config.PolicyConfig) Policy {
	return Policy{
		Name:        "otp",
		Window:      cfg.Window,
		MaxRequests: cfg.MaxRequests,
		Message:     "Too many OTP requests, please wait before requesting again.",
		KeyFunc:     clientIPAndEmailKey,
	}
}

func BookingPolicy(cfg config.PolicyConfig) Policy {
	return Policy{
		Name:        "booking",
		Window:      cfg.Window,
		MaxRequests: cfg.MaxRequests,
		Message:     "Too many booking submissions, please try again later.",
		KeyFunc:     clientIPKey,
	}
}

// RateLimit enforces a fixed-window limit keyed by the policy's key
// function. The counter lives in the shared KV store behind an atomic
// increment-with-expiry, so concurrent requests on one key cannot
// under-count. A failing store lets requests through rather than blocking
// traffic on an outage.
func RateLimit(store repository.KVStore, logger *zap.Logger, policy Policy) gin.HandlerFunc {
	keyFunc := policy.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIPKey
	}

	return func(c *gin.Context) {
		key := "rate_limit:" + policy.Name + ":" + keyFunc(c)

		count, expiresAt, err := store.IncrBy(c.Request.Context(), key, 1, policy.Window)
		if err != nil {
			logger.Warn("rate limit store error, allowing request",
				zap.String("policy", policy.Name),
				zap.Error(err))
			c.Next()
			return
		}
		if expiresAt.IsZero() {
			expiresAt = time.Now().Add(policy.Window)
		}

		limit := policy.MaxRequests
		c.Header("X-RateLimit-Limit", formatInt(limit))

		if count > limit {
			retryAfter := int(math.Ceil(time.Until(expiresAt).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", expiresAt.UTC().Format(time.RFC3339))
			c.Header("Retry-After", formatInt(int64(retryAfter)))
			response.TooManyRequests(c, "Rate limit exceeded", policy.Message, retryAfter)
			c.Abort()
			return
		}

		remaining := limit - count
		c.Header("X-RateLimit-Remaining", formatInt(remaining))
		c.Header("X-RateLimit-Reset", expiresAt.UTC().Format(time.RFC3339))

		c.Next()

		if policy.SkipSuccessful && c.Writer.Status() < 400 {
			if _, _, err := store.IncrBy(c.Request.Context(), key, -1, policy.Window); err != nil {
				logger.Warn("rate limit refund failed",
					zap.String("policy", policy.Name),
					zap.Error(err))
			}
		}
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
