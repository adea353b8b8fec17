package handlers

import (
	"github.com/bitirgenalperen/ilkevim-sub000/middleware"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/notify"
	"github.com/bitirgenalperen/ilkevim-sub000/websocket"

	"github.com/gin-gonic/gin"
)

// EventsRepo is what the routes need from the events repository.
type EventsRepo interface {
	EventStore
	EventImageStore
}

type Dependencies struct {
	Properties  PropertyStore
	Events      EventsRepo
	Submissions SubmissionStore
	Chat        ChatStore
	Images      ImageStore
	Notifier    notify.Notifier
	Hub         *websocket.Hub

	MaxUploadSize     int64
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
}

// RegisterRoutes mounts the public site API and the admin API on r.
func RegisterRoutes(r gin.IRouter, d Dependencies) {
	properties := NewPropertiesHandler(d.Properties, d.Images)
	images := NewImagesHandler(d.Properties, d.Events, d.Images, d.MaxUploadSize)
	eventsHandler := NewEventsHandler(d.Events, d.Images)
	submissions := NewSubmissionsHandler(d.Submissions, d.Properties, d.Notifier)
	chat := NewChatHandler(d.Chat, d.Hub, d.Notifier)
	auth := NewAuthHandler(d.AdminUsername, d.AdminPasswordHash, d.JWTSecret)

	r.GET("/health", HealthCheck)

	r.GET("/properties", properties.List)
	r.GET("/properties/:id", properties.Get)
	r.GET("/events", eventsHandler.List)
	r.GET("/events/:id", eventsHandler.Get)
	r.POST("/calculators/sdlt", SDLT)
	r.POST("/calculators/mortgage", Mortgage)

	r.POST("/submissions", middleware.StrictRateLimitMiddleware("submissions", 0.05, 3), submissions.Create)
	r.GET("/chat/ws", middleware.StrictRateLimitMiddleware("chat", 0.2, 5), websocket.ServeChat(d.Hub, chat))
	r.POST("/admin/login", middleware.StrictRateLimitMiddleware("login", 1, 5), auth.Login)

	admin := r.Group("/admin", AuthMiddleware(d.JWTSecret), middleware.AdminRateLimitMiddleware())
	{
		admin.GET("/properties", properties.AdminList)
		admin.GET("/properties/:id", properties.AdminGet)
		admin.POST("/properties", properties.Create)
		admin.PATCH("/properties/:id", properties.Update)
		admin.PATCH("/properties/:id/status", properties.UpdateStatus)
		admin.DELETE("/properties/:id", properties.Delete)
		admin.POST("/properties/:id/images", images.UploadPropertyImage)
		admin.DELETE("/properties/:id/images", images.DeletePropertyImage)

		admin.POST("/events", eventsHandler.Create)
		admin.PUT("/events/:id/image", images.UploadEventImage)
		admin.PATCH("/events/:id/delete", eventsHandler.Delete)
		admin.PATCH("/events/:id/restore", eventsHandler.Restore)

		admin.GET("/submissions", submissions.List)
		admin.POST("/submissions/:id/approve", submissions.Approve)
		admin.POST("/submissions/:id/reject", submissions.Reject)

		admin.GET("/chat/:session", chat.History)
		admin.POST("/chat/:session/reply", chat.Reply)
	}
}
