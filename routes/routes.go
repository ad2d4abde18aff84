package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medbot-backend/config"
	"medbot-backend/controllers"
	"medbot-backend/database"
	"medbot-backend/middleware"
	"medbot-backend/receipt"
	"medbot-backend/services"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Config   *config.Config
	Chatbot  *services.ChatbotService
	Receipts *receipt.Service
	// WhatsApp is nil when the channel is not configured.
	WhatsApp *services.WhatsAppService
}

// SetupRoutes registers every endpoint. It returns the WhatsApp controller so
// the caller can drain background webhook work on shutdown, or nil.
func SetupRoutes(router *gin.Engine, deps Dependencies) *controllers.WhatsAppController {
	corsConfig := cors.Config{
		AllowOrigins:     deps.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := database.HealthCheck(c.Request.Context(), deps.Config); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":              status,
			"timestamp":           time.Now(),
			"database":            deps.Config.Database.Type,
			"session_store":       deps.Config.Session.Store,
			"ai_enabled":          deps.Config.AIEnabled(),
			"whatsapp_configured": deps.WhatsApp != nil,
		})
	})

	chatbotController := controllers.NewChatbotController(deps.Chatbot)
	sessionController := controllers.NewSessionController(deps.Chatbot)
	receiptController := controllers.NewReceiptController(deps.Receipts)
	wsController := controllers.NewWebSocketController(deps.Chatbot, deps.Config.AllowedOrigins)

	public := router.Group("/api/v1")
	{
		public.POST("/sessions", sessionController.CreateSession)
		public.GET("/sessions/:id", sessionController.GetSession)
		public.DELETE("/sessions/:id", sessionController.DeleteSession)
		public.POST("/sessions/:id/reset", sessionController.ResetSession)
		public.GET("/sessions/:id/bookings", sessionController.ListBookings)

		public.POST("/chat", chatbotController.HandleChat)
		public.GET("/intents", chatbotController.GetSupportedIntents)

		public.GET("/receipts/:name", receiptController.Download)

		public.GET("/ws", wsController.HandleWebSocket)
	}

	var whatsappController *controllers.WhatsAppController
	if deps.WhatsApp != nil {
		whatsappController = controllers.NewWhatsAppController(deps.WhatsApp, deps.Chatbot)

		whatsapp := router.Group("/api/whatsapp")
		{
			// Meta calls these without auth; posts are HMAC signed.
			whatsapp.GET("/webhook", whatsappController.VerifyWebhook)
			whatsapp.POST("/webhook", middleware.VerifyWhatsAppSignature(deps.Config.WhatsApp.AppSecret), whatsappController.HandleWebhook)
			whatsapp.GET("/status", whatsappController.GetStatus)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	return whatsappController
}
