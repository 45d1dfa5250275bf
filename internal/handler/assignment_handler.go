package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/assignment-api/internal/models"
	"github.com/trainhub/assignment-api/internal/service"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
	"github.com/trainhub/assignment-api/pkg/response"
)

// AssignmentHandler exposes assignment placement and removal endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List returns a schedule's assignments with filters and pagination.
func (h *AssignmentHandler) List(c *gin.Context) {
	var filter models.AssignmentFilter
	filter.LearnerID = c.Query("learnerId")
	filter.CourseID = c.Query("courseId")
	filter.Location = c.Query("location")
	filter.Source = models.AssignmentSource(c.Query("source"))
	if n, err := strconv.Atoi(c.Query("group")); err == nil {
		filter.GroupNumber = n
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	assignments, pagination, err := h.assignments.List(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, &pagination)
}

// Assign places one learner onto a target reference.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.assignments.AssignSingle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// AssignBulk places several learners onto one target reference. Per-learner
// failures are part of the payload, not an HTTP error.
func (h *AssignmentHandler) AssignBulk(c *gin.Context) {
	var req service.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assignments.AssignBulk(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RemoveFromGroup deletes a learner's assignments for one group.
func (h *AssignmentHandler) RemoveFromGroup(c *gin.Context) {
	var req service.RemoveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.RemoveFromGroup(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveFromCourse deletes a learner's assignments for one course.
func (h *AssignmentHandler) RemoveFromCourse(c *gin.Context) {
	var req service.RemoveCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.RemoveFromCourse(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveAll deletes every assignment for a schedule.
func (h *AssignmentHandler) RemoveAll(c *gin.Context) {
	if err := h.assignments.RemoveAll(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
