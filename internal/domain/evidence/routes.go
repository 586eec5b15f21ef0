package evidence

import "github.com/gin-gonic/gin"

// RegisterInstallerRoutes expects a group already gated to installers.
func RegisterInstallerRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/jobs/:id/evidence", handler.Upload)
	r.DELETE("/jobs/:id/evidence/:evidenceId", handler.Delete)
}
