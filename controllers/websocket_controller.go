package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"medbot-backend/failure"
	"medbot-backend/models"
	"medbot-backend/services"
)

type WebSocketController struct {
	chatbotService *services.ChatbotService
	upgrader       websocket.Upgrader
}

// NewWebSocketController accepts upgrades from the given origins; an empty
// list accepts any origin.
func NewWebSocketController(chatbotService *services.ChatbotService, allowedOrigins []string) *WebSocketController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketController{
		chatbotService: chatbotService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

type wsMessage struct {
	Message string `json:"message"`
}

// HandleWebSocket runs turns for ?session_id= until the client disconnects.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		respondError(c, failure.BadRequestFromString("session_id is required"))
		return
	}
	if _, err := wc.chatbotService.GetSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("session_id", sessionID).Msg("WebSocket read error")
			}
			return
		}

		if msg.Message == "" {
			_ = conn.WriteJSON(gin.H{"error": "message is required"})
			continue
		}

		response, err := wc.chatbotService.ProcessMessage(ctx, models.ChatRequest{
			Message:   msg.Message,
			SessionID: sessionID,
			Channel:   models.ChannelWebSocket,
		})
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to process message")
			_ = conn.WriteJSON(gin.H{"error": "Failed to process message"})
			continue
		}

		if err := conn.WriteJSON(response); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("WebSocket write error")
			return
		}
	}
}
