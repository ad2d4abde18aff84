package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medbot-backend/failure"
	"medbot-backend/models"
	"medbot-backend/services"
)

type ChatbotController struct {
	chatbotService *services.ChatbotService
}

func NewChatbotController(chatbotService *services.ChatbotService) *ChatbotController {
	return &ChatbotController{
		chatbotService: chatbotService,
	}
}

// HandleChat processes one user turn.
func (cc *ChatbotController) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, failure.BadRequest(err))
		return
	}
	if req.Channel == "" {
		req.Channel = models.ChannelWeb
	}

	response, err := cc.chatbotService.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSupportedIntents lists the intent rules in the order they are tried.
func (cc *ChatbotController) GetSupportedIntents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"intents":  cc.chatbotService.Intents(),
		"fallback": models.IntentFallback,
	})
}
