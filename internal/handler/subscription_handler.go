package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hybe/bookinghub/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

type ValidateSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

// Validate always answers 200 with a ValidationResult; malformed input is an
// invalid result, not an HTTP error, so the client form can render the
// message directly.
func (h *SubscriptionHandler) Validate(c *gin.Context) {
	var req ValidateSubscriptionRequest
	_ = c.ShouldBindJSON(&req)

	result := h.subscriptionService.Validate(c.Request.Context(), req.SubscriptionID)
	c.JSON(http.StatusOK, result)
}

func (h *SubscriptionHandler) Types(c *gin.Context) {
	counts, total, err := h.subscriptionService.TypeCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch subscription types",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptionTypes": counts,
		"totalActive":       total,
	})
}
