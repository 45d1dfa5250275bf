package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/assignment-api/internal/service"
	"github.com/trainhub/assignment-api/pkg/response"
)

// AutoAssignHandler exposes auto-assign run endpoints.
type AutoAssignHandler struct {
	autoAssign *service.AutoAssignService
}

// NewAutoAssignHandler constructs AutoAssignHandler.
func NewAutoAssignHandler(autoAssign *service.AutoAssignService) *AutoAssignHandler {
	return &AutoAssignHandler{autoAssign: autoAssign}
}

// Start enqueues an auto-assign run for a schedule.
func (h *AutoAssignHandler) Start(c *gin.Context) {
	snapshot, err := h.autoAssign.StartRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, snapshot)
}

// Progress returns the latest snapshot for a run.
func (h *AutoAssignHandler) Progress(c *gin.Context) {
	snapshot, err := h.autoAssign.Progress(c.Request.Context(), c.Param("runID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Cancel flags a running batch for cooperative cancellation.
func (h *AutoAssignHandler) Cancel(c *gin.Context) {
	if err := h.autoAssign.Cancel(c.Request.Context(), c.Param("runID")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "cancellation requested"}, nil)
}
