package export

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes expects a group already gated to admins.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/jobs/export", handler.Export)
}
