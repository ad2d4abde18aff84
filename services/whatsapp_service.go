package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"medbot-backend/config"
	"medbot-backend/models"
)

const (
	graphAPIURL = "https://graph.facebook.com"

	maxButtons     = 3
	maxButtonTitle = 20
	maxBodyLength  = 1024
)

// WhatsAppService sends replies through the WhatsApp Cloud API.
type WhatsAppService struct {
	apiURL        string
	apiVersion    string
	accessToken   string
	phoneNumberID string
	verifyToken   string
	httpClient    *http.Client

	messageCount atomic.Int64
	failedCount  atomic.Int64
}

func NewWhatsAppService(cfg config.WhatsAppConfig) *WhatsAppService {
	return &WhatsAppService{
		apiURL:        graphAPIURL,
		apiVersion:    cfg.APIVersion,
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		verifyToken:   cfg.VerifyToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL points the service at another Graph API host.
func (ws *WhatsAppService) WithBaseURL(url string) *WhatsAppService {
	ws.apiURL = strings.TrimRight(url, "/")
	return ws
}

// GetVerifyToken returns the webhook verification token
func (ws *WhatsAppService) GetVerifyToken() string {
	return ws.verifyToken
}

// SendTextMessage sends a simple text message
func (ws *WhatsAppService) SendTextMessage(ctx context.Context, to string, message string) error {
	payload := models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               ws.CleanPhoneNumber(to),
		Type:             "text",
		Text: &models.WhatsAppText{
			Body: message,
		},
	}
	return ws.sendRequest(ctx, payload)
}

// SendInteractiveMessage sends an interactive message
func (ws *WhatsAppService) SendInteractiveMessage(ctx context.Context, to string, interactive *models.InteractiveMessage) error {
	payload := models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               ws.CleanPhoneNumber(to),
		Type:             "interactive",
		Interactive:      interactive,
	}
	return ws.sendRequest(ctx, payload)
}

// SendResponse delivers a chat reply, using reply buttons when the reply
// carries actions. The receipt link follows as a separate text message.
func (ws *WhatsAppService) SendResponse(ctx context.Context, to string, resp *models.ChatResponse) error {
	var err error
	if resp.NeedsInteractiveFormat() && len(resp.Actions) > 0 {
		err = ws.SendInteractiveMessage(ctx, to, BuildInteractive(resp))
	} else {
		err = ws.SendTextMessage(ctx, to, truncate(resp.Response, 4096))
	}
	if err != nil {
		return err
	}

	if resp.Receipt != nil && resp.Receipt.URL != "" {
		return ws.SendTextMessage(ctx, to, "📄 Your receipt: "+resp.Receipt.URL)
	}
	return nil
}

// BuildInteractive converts a reply into a button message within the
// Cloud API limits.
func BuildInteractive(resp *models.ChatResponse) *models.InteractiveMessage {
	var buttons []models.InteractiveButton
	for i, a := range resp.Actions {
		if i == maxButtons {
			break
		}
		if a.ID == "" {
			a.ID = fmt.Sprintf("%s_%d", a.Type, i)
		}
		a.Label = truncate(a.Label, maxButtonTitle)
		buttons = append(buttons, a.ToWhatsAppButton())
	}

	return &models.InteractiveMessage{
		Type:   "button",
		Body:   &models.InteractiveBody{Text: truncate(resp.Response, maxBodyLength)},
		Footer: &models.InteractiveFooter{Text: "MedBot"},
		Action: &models.InteractiveAction{
			Buttons: buttons,
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// MarkMessageAsRead marks a message as read
func (ws *WhatsAppService) MarkMessageAsRead(ctx context.Context, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return ws.sendRequest(ctx, payload)
}

func (ws *WhatsAppService) sendRequest(ctx context.Context, payload interface{}) error {
	url := fmt.Sprintf("%s/%s/%s/messages", ws.apiURL, ws.apiVersion, ws.phoneNumberID)

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+ws.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		ws.failedCount.Add(1)
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ws.failedCount.Add(1)
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		ws.failedCount.Add(1)
		var errorResp struct {
			Error models.Error `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			log.Error().
				Int("status", resp.StatusCode).
				Int("code", errorResp.Error.Code).
				Str("message", errorResp.Error.Message).
				Msg("WhatsApp API error")
			return errors.Errorf("WhatsApp API error %d: %s", errorResp.Error.Code, errorResp.Error.Message)
		}
		return errors.Errorf("WhatsApp API error: %s", string(body))
	}

	ws.messageCount.Add(1)
	return nil
}

// CleanPhoneNumber strips everything but digits and prefixes the Indian
// country code on bare ten-digit numbers.
func (ws *WhatsAppService) CleanPhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if len(cleaned) == 10 {
		cleaned = "91" + cleaned
	}
	return cleaned
}

// GetStatus returns the service status
func (ws *WhatsAppService) GetStatus() models.WhatsAppServiceStatus {
	return models.WhatsAppServiceStatus{
		Enabled:      ws.accessToken != "" && ws.phoneNumberID != "",
		MessageCount: ws.messageCount.Load(),
		FailedCount:  ws.failedCount.Load(),
	}
}
