package job

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes expects a group already gated to admins.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	jobs := r.Group("/jobs")
	{
		jobs.POST("", handler.Create)
		jobs.GET("", handler.List)
		jobs.POST("/notify", handler.Remind)
		jobs.GET("/:id", handler.Get)
		jobs.DELETE("/:id", handler.Delete)
		jobs.POST("/:id/revert", handler.Revert)
	}
}

// RegisterInstallerRoutes expects a group already gated to installers.
func RegisterInstallerRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/jobs", handler.InstallerList)
	r.GET("/jobs/:id", handler.InstallerDetail)
	r.POST("/jobs/:id/submit", handler.Submit)
	r.GET("/incidents", handler.Incidents)
}
