package export

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain/job"
	"fieldjobs/internal/pkg/response"
	"fieldjobs/internal/pkg/validator"
)

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(service *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, log: log}
}

// Export godoc
// @Summary Export evidence as zip
// @Description One folder per job with its evidence files. Files that cannot be downloaded become error_N.txt.
// @Tags Jobs
// @Accept json
// @Produce application/zip
// @Security BearerAuth
// @Param request body job.JobIDsRequest true "Jobs"
// @Success 200 {file} binary
// @Failure 400,404 {object} map[string]interface{}
// @Router /admin/jobs/export [post]
func (h *Handler) Export(c *gin.Context) {
	var req job.JobIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	bundle, err := h.service.Prepare(c.Request.Context(), req.JobIDs)
	if errors.Is(err, ErrNoJobs) {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if err != nil {
		job.WriteError(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+bundle.Filename+`"`)
	c.Status(http.StatusOK)
	if _, err := bundle.WriteTo(c.Writer); err != nil {
		h.log.WithError(err).Error("writing export archive failed")
	}
}
