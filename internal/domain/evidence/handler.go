package evidence

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload job evidence
// @Description Installer uploads a photo or signature for a pending job assigned to them.
// @Tags Evidence
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param type formData string true "photo or signature"
// @Param file formData file true "Image file"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,403,404,409,413 {object} map[string]interface{}
// @Router /installer/jobs/{id}/evidence [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no file provided")
		return
	}

	e, err := h.service.Upload(c.Request.Context(), userID, c.Param("id"), c.PostForm("type"), fh)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, e)
}

// Delete godoc
// @Summary Delete job evidence
// @Tags Evidence
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param evidenceId path string true "Evidence ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,403,404,409 {object} map[string]interface{}
// @Router /installer/jobs/{id}/evidence/{evidenceId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id"), c.Param("evidenceId")); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEvidenceNotFound), errors.Is(err, ErrJobNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, ErrNotAssignee):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, ErrJobNotPending):
		response.CustomError(c, http.StatusConflict, "INVALID_TRANSITION", err)
	case errors.Is(err, ErrFileTooLarge):
		response.CustomError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err)
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process evidence")
	}
}
