package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse is the envelope for OTP and booking endpoints.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RateLimitResponse is returned on 429 together with the Retry-After header.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, StatusResponse{Success: true, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, StatusResponse{Success: false, Message: message})
}

func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, StatusResponse{Success: false, Message: message})
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, StatusResponse{Success: false, Message: message})
}

func ServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, StatusResponse{Success: false, Message: message})
}

func TooManyRequests(c *gin.Context, errLabel, message string, retryAfter int) {
	c.JSON(http.StatusTooManyRequests, RateLimitResponse{
		Error:      errLabel,
		Message:    message,
		RetryAfter: retryAfter,
	})
}
