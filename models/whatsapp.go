package models

// InteractiveMessage for WhatsApp interactive messages
type InteractiveMessage struct {
	Type   string             `json:"type"` // "button"
	Body   *InteractiveBody   `json:"body"`
	Footer *InteractiveFooter `json:"footer,omitempty"`
	Action *InteractiveAction `json:"action"`
}

type InteractiveBody struct {
	Text string `json:"text"`
}

type InteractiveFooter struct {
	Text string `json:"text"`
}

type InteractiveAction struct {
	Buttons []InteractiveButton `json:"buttons,omitempty"`
}

type InteractiveButton struct {
	Type  string       `json:"type"` // "reply"
	Reply *ButtonReply `json:"reply"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WhatsApp Webhook Models
type WhatsAppWebhookData struct {
	Object string          `json:"object"`
	Entry  []WhatsAppEntry `json:"entry"`
}

type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

type WhatsAppChange struct {
	Field string        `json:"field"`
	Value WhatsAppValue `json:"value"`
}

type WhatsAppValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         WhatsAppMetadata  `json:"metadata"`
	Messages         []WhatsAppMessage `json:"messages,omitempty"`
	Statuses         []WhatsAppStatus  `json:"statuses,omitempty"`
	Contacts         []WhatsAppContact `json:"contacts,omitempty"`
}

type WhatsAppMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WhatsAppMessage struct {
	From        string                    `json:"from"`
	ID          string                    `json:"id"`
	Timestamp   string                    `json:"timestamp"`
	Type        string                    `json:"type"`
	Text        *WhatsAppText             `json:"text,omitempty"`
	Interactive *WhatsAppInteractiveReply `json:"interactive,omitempty"`
}

type WhatsAppText struct {
	Body string `json:"body"`
}

type WhatsAppInteractiveReply struct {
	Type        string               `json:"type"`
	ButtonReply *WhatsAppButtonReply `json:"button_reply,omitempty"`
}

type WhatsAppButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type WhatsAppContact struct {
	Profile WhatsAppProfile `json:"profile"`
	WaID    string          `json:"wa_id"`
}

type WhatsAppProfile struct {
	Name string `json:"name"`
}

type WhatsAppStatus struct {
	ID          string  `json:"id"`
	RecipientID string  `json:"recipient_id"`
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Errors      []Error `json:"errors,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// WhatsApp Send Message Models
type WhatsAppSendMessage struct {
	MessagingProduct string              `json:"messaging_product"`
	RecipientType    string              `json:"recipient_type"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *WhatsAppText       `json:"text,omitempty"`
	Interactive      *InteractiveMessage `json:"interactive,omitempty"`
}

// Service Status Model
type WhatsAppServiceStatus struct {
	Enabled      bool  `json:"enabled"`
	MessageCount int64 `json:"message_count"`
	FailedCount  int64 `json:"failed_count"`
}
