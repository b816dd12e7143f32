package routes

import (
	"github.com/labstack/echo/v4"

	"clientportal/internal/auth"
	"clientportal/internal/handlers"
)

type Dependencies struct {
	Sessions      *auth.SessionValidator
	RateLimit     echo.MiddlewareFunc
	Auth          *handlers.AuthHandler
	Notifications *handlers.NotificationHandler
	EmailStatus   *handlers.EmailStatusHandler
	Documents     *handlers.DocumentHandler
	DB            handlers.Pinger
}

func SetupRoutes(api *echo.Group, d Dependencies) {
	// Public routes
	api.GET("/health", handlers.HealthCheck(d.DB))
	api.POST("/auth/login", d.Auth.Login, d.RateLimit)
	api.POST("/auth/logout", d.Auth.Logout)

	session := []echo.MiddlewareFunc{d.RateLimit, d.Sessions.Middleware}
	admin := append(append([]echo.MiddlewareFunc{}, session...), auth.RequireAdmin)

	// Admin broadcast notifications
	api.GET("/notifications/paginated", d.Notifications.GetPaginated, admin...)
	api.POST("/notifications/mark-all-read", d.Notifications.MarkAllRead, admin...)
	api.POST("/notifications/:id/read", d.Notifications.MarkRead, admin...)
	api.GET("/notifications/:id/email-status", d.EmailStatus.Get, admin...)

	// Per-user notifications
	user := api.Group("/user/notifications")
	user.GET("", d.Notifications.ListUserNotifications, session...)
	user.GET("/unread-count", d.Notifications.UserUnreadCount, session...)
	user.POST("/mark-all-read", d.Notifications.MarkAllUserRead, session...)
	user.POST("/:id/read", d.Notifications.MarkUserRead, session...)

	// Document requests
	docs := api.Group("/document-requests")
	docs.POST("", d.Documents.Create, session...)
	docs.GET("", d.Documents.List, session...)
	docs.GET("/:id", d.Documents.Get, session...)
	docs.POST("/:id/status", d.Documents.UpdateStatus, admin...)
}
