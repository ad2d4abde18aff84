package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageIntent string

const (
	IntentSymptom      MessageIntent = "symptom_analysis"
	IntentBooking      MessageIntent = "booking"
	IntentDoctorList   MessageIntent = "doctor_list"
	IntentHospitalList MessageIntent = "hospital_list"
	IntentGreeting     MessageIntent = "greeting"
	IntentFallback     MessageIntent = "fallback"
)

// MessageChannel represents the communication channel
type MessageChannel string

const (
	ChannelWeb       MessageChannel = "web"
	ChannelWebSocket MessageChannel = "websocket"
	ChannelWhatsApp  MessageChannel = "whatsapp"
)

// Message is one persisted user/bot exchange.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	UserMessage string             `bson:"user_message" json:"user_message"`
	BotResponse string             `bson:"bot_response" json:"bot_response"`
	Intent      MessageIntent      `bson:"intent" json:"intent"`
	BookingID   string             `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Channel     MessageChannel     `bson:"channel,omitempty" json:"channel,omitempty"`
}

type ChatRequest struct {
	Message   string         `json:"message" binding:"required,max=2000"`
	SessionID string         `json:"session_id" binding:"required"`
	Channel   MessageChannel `json:"channel,omitempty"`
}

// ChatResponse is the markdown reply for one turn plus the optional receipt affordance.
type ChatResponse struct {
	SessionID    string                 `json:"session_id"`
	Response     string                 `json:"response"`
	Intent       MessageIntent          `json:"intent"`
	Actions      []Action               `json:"actions,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Booking      *Booking               `json:"booking,omitempty"`
	Receipt      *Receipt               `json:"receipt,omitempty"`
	ResponseType ResponseType           `json:"response_type,omitempty"`
}

// ResponseType for different message types
type ResponseType string

const (
	ResponseTypeText        ResponseType = "text"
	ResponseTypeInteractive ResponseType = "interactive"
)

type Action struct {
	Type        string                 `json:"type"`
	Label       string                 `json:"label"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Description string                 `json:"description,omitempty"`
	ID          string                 `json:"id,omitempty"`
}

// Helper function to convert Action to WhatsApp format
func (a Action) ToWhatsAppButton() InteractiveButton {
	return InteractiveButton{
		Type: "reply",
		Reply: &ButtonReply{
			ID:    a.ID,
			Title: a.Label,
		},
	}
}

// Helper method to check if response needs interactive formatting
func (cr ChatResponse) NeedsInteractiveFormat() bool {
	return len(cr.Actions) > 0 || cr.ResponseType == ResponseTypeInteractive
}

// Helper method to create a simple text response
func NewTextResponse(text string, intent MessageIntent) *ChatResponse {
	return &ChatResponse{
		Response:     text,
		Intent:       intent,
		ResponseType: ResponseTypeText,
	}
}

// Helper method to create an interactive response
func NewInteractiveResponse(text string, intent MessageIntent, actions []Action) *ChatResponse {
	return &ChatResponse{
		Response:     text,
		Intent:       intent,
		Actions:      actions,
		ResponseType: ResponseTypeInteractive,
	}
}
