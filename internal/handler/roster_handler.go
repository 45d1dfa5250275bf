package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/assignment-api/internal/models"
	"github.com/trainhub/assignment-api/internal/service"
	"github.com/trainhub/assignment-api/pkg/response"
)

// RosterHandler exposes learner roster read endpoints.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// List returns a project's active learners.
func (h *RosterHandler) List(c *gin.Context) {
	filter := models.RosterFilter{
		Role:     c.Query("role"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
	}
	learners, err := h.roster.List(c.Request.Context(), c.Param("projectID"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, learners, nil)
}

// Find returns a single learner.
func (h *RosterHandler) Find(c *gin.Context) {
	learner, err := h.roster.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, learner, nil)
}
