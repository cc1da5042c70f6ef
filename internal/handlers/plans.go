package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/plans"
)

// PlansHandler serves the public plan table
type PlansHandler struct{}

// NewPlansHandler creates a new plans handler
func NewPlansHandler() *PlansHandler {
	return &PlansHandler{}
}

// List handles GET /api/v1/plans
func (h *PlansHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": plans.All()})
}
