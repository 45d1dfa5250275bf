package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/assignment-api/internal/service"
	"github.com/trainhub/assignment-api/pkg/response"
)

// ScheduleHandler exposes schedule catalog read endpoints.
type ScheduleHandler struct {
	assignments *service.AssignmentService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(assignments *service.AssignmentService) *ScheduleHandler {
	return &ScheduleHandler{assignments: assignments}
}

// Sessions returns the flattened, annotated session catalog.
func (h *ScheduleHandler) Sessions(c *gin.Context) {
	sessions, err := h.assignments.Sessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Categories returns the roster partition for the schedule.
func (h *ScheduleHandler) Categories(c *gin.Context) {
	categories, err := h.assignments.Categories(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Capacity returns occupancy snapshots per location and group.
func (h *ScheduleHandler) Capacity(c *gin.Context) {
	snapshots, err := h.assignments.Capacity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, nil)
}
