package approval

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldjobs/internal/domain/job"
	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Queue godoc
// @Summary Review queue
// @Description Jobs in en_revision, oldest first, with photos and signatures.
// @Tags Approvals
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} QueueResponse
// @Router /admin/approvals [get]
func (h *Handler) Queue(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	items, total, err := h.service.Queue(c.Request.Context(), limit, offset)
	if err != nil {
		job.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, QueueResponse{Items: items, Total: total})
}

// Reasons godoc
// @Summary Common rejection reasons
// @Tags Approvals
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/approvals/reasons [get]
func (h *Handler) Reasons(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"reasons": CommonReasons})
}

// Approve godoc
// @Summary Approve a job
// @Tags Approvals
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} Decision
// @Failure 404,409 {object} map[string]interface{}
// @Router /admin/approvals/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	d, err := h.service.Approve(c.Request.Context(), middleware.Role(c), c.Param("id"))
	if err != nil {
		job.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// Reject godoc
// @Summary Reject a job
// @Description Sends the job back to the installer as pending with the composed reason.
// @Tags Approvals
// @Accept json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param request body RejectRequest true "Reason"
// @Success 200 {object} Decision
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /admin/approvals/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	d, err := h.service.Reject(c.Request.Context(), middleware.Role(c), c.Param("id"), req.Compose())
	if err != nil {
		job.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// Downloads godoc
// @Summary Evidence URLs of a job
// @Tags Approvals
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} DownloadsResponse
// @Router /admin/approvals/{id}/downloads [get]
func (h *Handler) Downloads(c *gin.Context) {
	urls, err := h.service.Downloads(c.Request.Context(), c.Param("id"))
	if err != nil {
		job.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, DownloadsResponse{URLs: urls})
}
