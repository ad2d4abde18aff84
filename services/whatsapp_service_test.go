package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbot-backend/config"
	"medbot-backend/models"
	"medbot-backend/services"
)

type graphStub struct {
	mu       sync.Mutex
	payloads []models.WhatsAppSendMessage
	paths    []string
	auth     string
	status   int
}

func (g *graphStub) handler(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var p models.WhatsAppSendMessage
	_ = json.NewDecoder(r.Body).Decode(&p)
	g.payloads = append(g.payloads, p)
	g.paths = append(g.paths, r.URL.Path)
	g.auth = r.Header.Get("Authorization")

	if g.status != 0 {
		w.WriteHeader(g.status)
		_, _ = w.Write([]byte(`{"error":{"code":131030,"message":"Recipient not allowed"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
}

func newWhatsApp(t *testing.T, stub *graphStub) *services.WhatsAppService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(srv.Close)

	cfg := config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		VerifyToken:   "verify",
		APIVersion:    "v18.0",
	}
	return services.NewWhatsAppService(cfg).WithBaseURL(srv.URL)
}

func TestWhatsAppService_SendTextMessage(t *testing.T) {
	stub := &graphStub{}
	ws := newWhatsApp(t, stub)

	require.NoError(t, ws.SendTextMessage(context.Background(), "+91 98000-00000", "hello"))

	require.Len(t, stub.payloads, 1)
	assert.Equal(t, "/v18.0/12345/messages", stub.paths[0])
	assert.Equal(t, "Bearer token", stub.auth)
	assert.Equal(t, "919800000000", stub.payloads[0].To)
	assert.Equal(t, "hello", stub.payloads[0].Text.Body)
	assert.Equal(t, int64(1), ws.GetStatus().MessageCount)
}

func TestWhatsAppService_SendResponse(t *testing.T) {
	stub := &graphStub{}
	ws := newWhatsApp(t, stub)

	resp := models.NewInteractiveResponse("Pick one", models.IntentGreeting, []models.Action{
		{Type: "quick_action", Label: "Hospitals nearby", ID: "hospital_list"},
		{Type: "quick_action", Label: "A label that is far too long for a button"},
		{Type: "quick_action", Label: "Book appointment", ID: "book_appointment"},
		{Type: "quick_action", Label: "Fourth", ID: "fourth"},
	})
	resp.Receipt = &models.Receipt{URL: "http://medbot.test/api/v1/receipts/A000001.pdf"}

	require.NoError(t, ws.SendResponse(context.Background(), "919800000000", resp))

	require.Len(t, stub.payloads, 2)
	interactive := stub.payloads[0].Interactive
	require.NotNil(t, interactive)
	assert.Equal(t, "Pick one", interactive.Body.Text)
	require.Len(t, interactive.Action.Buttons, 3)
	assert.LessOrEqual(t, len([]rune(interactive.Action.Buttons[1].Reply.Title)), 20)
	assert.Equal(t, "quick_action_1", interactive.Action.Buttons[1].Reply.ID)

	assert.True(t, strings.HasSuffix(stub.payloads[1].Text.Body, "A000001.pdf"))
}

func TestWhatsAppService_APIError(t *testing.T) {
	stub := &graphStub{status: http.StatusBadRequest}
	ws := newWhatsApp(t, stub)

	err := ws.SendTextMessage(context.Background(), "919800000000", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recipient not allowed")
	assert.Equal(t, int64(1), ws.GetStatus().FailedCount)
}

func TestCleanPhoneNumber(t *testing.T) {
	ws := services.NewWhatsAppService(config.WhatsAppConfig{})
	assert.Equal(t, "919876543210", ws.CleanPhoneNumber("98765 43210"))
	assert.Equal(t, "447700900123", ws.CleanPhoneNumber("+44 7700 900123"))
}
