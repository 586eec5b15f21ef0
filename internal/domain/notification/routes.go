package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes expects an authenticated group.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", handler.GetNotifications)
		notifGroup.GET("/unread-count", handler.GetUnreadCount)
		notifGroup.PATCH("/:id/read", handler.MarkAsRead)
		notifGroup.POST("/read-all", handler.MarkAllAsRead)
	}

	pushGroup := protected.Group("/push")
	{
		pushGroup.POST("/subscribe", handler.Subscribe)
		pushGroup.DELETE("/subscribe", handler.Unsubscribe)
	}
}

// RegisterPublicRoutes serves the VAPID key without authentication.
func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/push/vapid-public-key", handler.VAPIDPublicKey)
}
