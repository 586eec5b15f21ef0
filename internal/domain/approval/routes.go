package approval

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes expects a group already gated to admins.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("", handler.Queue)
		approvals.GET("/reasons", handler.Reasons)
		approvals.POST("/:id/approve", handler.Approve)
		approvals.POST("/:id/reject", handler.Reject)
		approvals.GET("/:id/downloads", handler.Downloads)
	}
}
