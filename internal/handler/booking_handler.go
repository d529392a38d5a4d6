package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hybe/bookinghub/internal/service"
	"hybe/bookinghub/pkg/response"
)

type BookingHandler struct {
	sink                service.BookingSink
	subscriptionService service.SubscriptionService
}

func NewBookingHandler(sink service.BookingSink, subscriptionService service.SubscriptionService) *BookingHandler {
	return &BookingHandler{sink: sink, subscriptionService: subscriptionService}
}

// Submit accepts a booking request, verifying any attached subscription id
// first. Persistence happens behind the sink.
func (h *BookingHandler) Submit(c *gin.Context) {
	var req service.BookingSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid booking request: "+err.Error())
		return
	}
	if !req.PrivacyConsent {
		response.BadRequest(c, "Privacy consent is required.")
		return
	}

	if req.SubscriptionID != "" {
		result := h.subscriptionService.Validate(c.Request.Context(), req.SubscriptionID)
		if !result.IsValid {
			response.BadRequest(c, result.Message)
			return
		}
	}

	reference := "BK-" + strings.ToUpper(uuid.NewString()[:8])
	if err := h.sink.Submit(c.Request.Context(), reference, req); err != nil {
		response.InternalError(c, "Failed to submit booking request.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Booking request received.",
		"bookingId": reference,
	})
}
