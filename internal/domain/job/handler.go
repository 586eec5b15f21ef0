package job

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/geo"
	"fieldjobs/internal/pkg/response"
	"fieldjobs/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Create a job
// @Description Admin creates a pending job assigned to an installer. The address is geocoded when possible.
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateJobRequest true "Job"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /admin/jobs [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	j, err := h.service.Create(c.Request.Context(), middleware.Role(c), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, j)
}

// List godoc
// @Summary List jobs
// @Tags Jobs
// @Security BearerAuth
// @Param status query string false "pending, en_revision, approved, paid"
// @Param assigned_to query string false "Installer ID"
// @Param q query string false "Search in title, client and address"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} JobListResponse
// @Router /admin/jobs [get]
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		AssignedTo: c.Query("assigned_to"),
		Query:      c.Query("q"),
		Limit:      queryInt(c, "limit", 50, 200),
		Offset:     queryInt(c, "offset", 0, -1),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseJobStatus(raw)
		if err != nil {
			response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status filter")
			return
		}
		f.Status = &status
	}

	jobs, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, JobListResponse{Jobs: jobs, Total: total})
}

// Get godoc
// @Summary Get a job
// @Tags Jobs
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/jobs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	j, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, j)
}

// Delete godoc
// @Summary Delete a job
// @Description Only pending and en_revision jobs can be deleted; evidence goes with them.
// @Tags Jobs
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,409 {object} map[string]interface{}
// @Router /admin/jobs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Role(c), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Revert godoc
// @Summary Revert an approved job
// @Description Without a reason the job returns to en_revision; with one it goes back to the installer as pending.
// @Tags Jobs
// @Accept json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param request body ReasonRequest false "Optional reason"
// @Success 200 {object} map[string]interface{}
// @Failure 404,409 {object} map[string]interface{}
// @Router /admin/jobs/{id}/revert [post]
func (h *Handler) Revert(c *gin.Context) {
	var req ReasonRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	j, err := h.service.Revert(c.Request.Context(), middleware.Role(c), c.Param("id"), req.Reason)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, j)
}

// Remind godoc
// @Summary Remind installers about pending jobs
// @Tags Jobs
// @Accept json
// @Security BearerAuth
// @Param request body JobIDsRequest true "Jobs"
// @Success 200 {object} RemindResponse
// @Router /admin/jobs/notify [post]
func (h *Handler) Remind(c *gin.Context) {
	var req JobIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	count, err := h.service.Remind(c.Request.Context(), req.JobIDs)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, RemindResponse{Count: count})
}

// PendingJobIDs godoc
// @Summary Pending jobs with an assignee
// @Tags Jobs
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /pending-jobs [get]
func (h *Handler) PendingJobIDs(c *gin.Context) {
	ids, err := h.service.PendingAssignedIDs(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobIds": ids})
}

// InstallerList godoc
// @Summary Installer job list
// @Description Jobs assigned to the caller: incidents first, then pending by distance, then newest.
// @Tags Installer
// @Security BearerAuth
// @Param lat query number false "Device latitude"
// @Param lng query number false "Device longitude"
// @Success 200 {object} InstallerJobsResponse
// @Router /installer/jobs [get]
func (h *Handler) InstallerList(c *gin.Context) {
	origin := originFromQuery(c)

	jobs, incidents, err := h.service.ListForInstaller(c.Request.Context(), middleware.UserID(c), origin)
	if err != nil {
		WriteError(c, err)
		return
	}

	sorted := "status"
	if origin != nil {
		sorted = "distance"
	}
	response.Success(c, http.StatusOK, InstallerJobsResponse{Jobs: jobs, IncidentCount: incidents, Sorted: sorted})
}

// Incidents godoc
// @Summary Count of jobs sent back to the installer
// @Tags Installer
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /installer/incidents [get]
func (h *Handler) Incidents(c *gin.Context) {
	n, err := h.service.IncidentCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n})
}

// InstallerDetail godoc
// @Summary Installer job detail
// @Tags Installer
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} JobDetail
// @Failure 403,404 {object} map[string]interface{}
// @Router /installer/jobs/{id} [get]
func (h *Handler) InstallerDetail(c *gin.Context) {
	d, err := h.service.Detail(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// Submit godoc
// @Summary Submit a job for review
// @Description Requires at least one photo and one signature.
// @Tags Installer
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,409,422 {object} map[string]interface{}
// @Router /installer/jobs/{id}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	j, err := h.service.Submit(c.Request.Context(), middleware.UserID(c), middleware.Role(c), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, j)
}

// WriteError maps lifecycle errors onto the response envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrJobNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, ErrUnauthorized):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, ErrEvidenceIncomplete):
		response.CustomError(c, http.StatusUnprocessableEntity, "EVIDENCE_INCOMPLETE", err)
	case errors.Is(err, ErrValidation):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	case errors.Is(err, ErrDeleteNotAllowed):
		response.CustomError(c, http.StatusConflict, "DELETE_NOT_ALLOWED", err)
	case errors.Is(err, ErrInvalidTransition):
		response.CustomError(c, http.StatusConflict, "INVALID_TRANSITION", err)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// originFromQuery ignores missing, partial or out-of-range coordinates.
func originFromQuery(c *gin.Context) *geo.Point {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return geo.NewPoint(&lat, &lng)
}

// queryInt reads a non-negative int, capped at max when max > 0.
func queryInt(c *gin.Context, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
