package controllers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medbot-backend/models"
	"medbot-backend/services"
)

// WhatsAppSessionPrefix namespaces sessions keyed by a WhatsApp number.
const WhatsAppSessionPrefix = "wa:"

type WhatsAppController struct {
	whatsappService *services.WhatsAppService
	chatbotService  *services.ChatbotService

	inflight sync.WaitGroup
}

func NewWhatsAppController(whatsappService *services.WhatsAppService, chatbotService *services.ChatbotService) *WhatsAppController {
	return &WhatsAppController{
		whatsappService: whatsappService,
		chatbotService:  chatbotService,
	}
}

// VerifyWebhook answers the subscription handshake from Meta.
func (wc *WhatsAppController) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == wc.whatsappService.GetVerifyToken() {
		log.Info().Msg("WhatsApp webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	log.Warn().Str("mode", mode).Msg("WhatsApp webhook verification failed")
	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// HandleWebhook acknowledges immediately and processes messages in the background.
func (wc *WhatsAppController) HandleWebhook(c *gin.Context) {
	var webhookData models.WhatsAppWebhookData
	if err := c.ShouldBindJSON(&webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook data"})
		return
	}

	// The request context is cancelled once we respond.
	ctx := context.WithoutCancel(c.Request.Context())

	wc.inflight.Add(1)
	go func() {
		defer wc.inflight.Done()
		wc.processWebhookData(ctx, webhookData)
	}()

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Wait blocks until background webhook processing has finished.
func (wc *WhatsAppController) Wait() {
	wc.inflight.Wait()
}

func (wc *WhatsAppController) processWebhookData(ctx context.Context, webhookData models.WhatsAppWebhookData) {
	for _, entry := range webhookData.Entry {
		for _, change := range entry.Changes {
			if change.Field == "messages" {
				wc.processMessages(ctx, change.Value)
			}
		}
	}
}

func (wc *WhatsAppController) processMessages(ctx context.Context, value models.WhatsAppValue) {
	names := make(map[string]string, len(value.Contacts))
	for _, contact := range value.Contacts {
		names[contact.WaID] = contact.Profile.Name
	}

	for _, message := range value.Messages {
		wc.handleIncomingMessage(ctx, message, names[message.From])
	}

	for _, status := range value.Statuses {
		wc.handleStatusUpdate(status)
	}
}

func (wc *WhatsAppController) handleIncomingMessage(ctx context.Context, message models.WhatsAppMessage, profileName string) {
	text := messageText(message)
	if text == "" {
		log.Debug().Str("type", message.Type).Str("from", message.From).Msg("Ignoring unsupported WhatsApp message")
		return
	}

	if err := wc.whatsappService.MarkMessageAsRead(ctx, message.ID); err != nil {
		log.Debug().Err(err).Str("message_id", message.ID).Msg("Failed to mark message as read")
	}

	if profileName == "" {
		profileName = message.From
	}
	sessionID := WhatsAppSessionPrefix + message.From
	if _, err := wc.chatbotService.EnsureSession(ctx, sessionID, models.UserProfile{Name: profileName}, models.ChannelWhatsApp); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to open WhatsApp session")
		return
	}

	response, err := wc.chatbotService.ProcessMessage(ctx, models.ChatRequest{
		Message:   text,
		SessionID: sessionID,
		Channel:   models.ChannelWhatsApp,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to process WhatsApp message")
		_ = wc.whatsappService.SendTextMessage(ctx, message.From, "Sorry, something went wrong. Please try again.")
		return
	}

	if err := wc.whatsappService.SendResponse(ctx, message.From, response); err != nil {
		log.Error().Err(err).Str("to", message.From).Msg("Failed to send WhatsApp reply")
	}
}

// messageText extracts the user's words; a button reply counts as its title.
func messageText(message models.WhatsAppMessage) string {
	switch message.Type {
	case "text":
		if message.Text != nil {
			return strings.TrimSpace(message.Text.Body)
		}
	case "interactive":
		if message.Interactive != nil && message.Interactive.ButtonReply != nil {
			return strings.TrimSpace(message.Interactive.ButtonReply.Title)
		}
	}
	return ""
}

func (wc *WhatsAppController) handleStatusUpdate(status models.WhatsAppStatus) {
	log.Debug().
		Str("message_id", status.ID).
		Str("recipient", status.RecipientID).
		Str("status", status.Status).
		Msg("WhatsApp status update")

	for _, e := range status.Errors {
		log.Warn().Int("code", e.Code).Str("title", e.Title).Msg(e.Message)
	}
}

// GetStatus returns WhatsApp service counters.
func (wc *WhatsAppController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, wc.whatsappService.GetStatus())
}
