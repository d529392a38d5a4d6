package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hybe/bookinghub/internal/repository"
)

type HealthHandler struct {
	chain *repository.LookupChain
}

func NewHealthHandler(chain *repository.LookupChain) *HealthHandler {
	return &HealthHandler{chain: chain}
}

// Database reports per-backend reachability of the lookup chain.
func (h *HealthHandler) Database(c *gin.Context) {
	backends := h.chain.Health(c.Request.Context())

	status := "disconnected"
	for _, b := range backends {
		if b.Reachable {
			status = "connected"
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"backends":  backends,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
