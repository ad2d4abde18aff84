package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medbot-backend/failure"
)

const signatureHeader = "X-Hub-Signature-256"

// VerifyWhatsAppSignature rejects webhook posts whose body is not signed with
// appSecret. An empty secret disables the check.
func VerifyWhatsAppSignature(appSecret string) gin.HandlerFunc {
	if appSecret == "" {
		log.Warn().Msg("WHATSAPP_APP_SECRET not set, webhook signatures are not verified")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		signature := c.GetHeader(signatureHeader)
		if signature == "" {
			abort(c, failure.Unauthorized("Missing signature"))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abort(c, failure.BadRequestFromString("Failed to read body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !hmac.Equal([]byte(signature), []byte(Sign(body, appSecret))) {
			log.Warn().Str("client_ip", c.ClientIP()).Msg("Invalid WhatsApp webhook signature")
			abort(c, failure.Unauthorized("Invalid signature"))
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(failure.GetCode(err), gin.H{"error": err.Error()})
}

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
