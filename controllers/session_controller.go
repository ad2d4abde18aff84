package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medbot-backend/failure"
	"medbot-backend/models"
	"medbot-backend/services"
)

type SessionController struct {
	chatbotService *services.ChatbotService
}

func NewSessionController(chatbotService *services.ChatbotService) *SessionController {
	return &SessionController{chatbotService: chatbotService}
}

// CreateSession stands in for login: the body is the patient profile.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var user models.UserProfile
	if err := c.ShouldBindJSON(&user); err != nil {
		respondError(c, failure.BadRequest(err))
		return
	}

	sess, err := sc.chatbotService.CreateSession(c.Request.Context(), user, models.ChannelWeb)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"user":       sess.User,
	})
}

func (sc *SessionController) GetSession(c *gin.Context) {
	sess, err := sc.chatbotService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSession stands in for logout.
func (sc *SessionController) DeleteSession(c *gin.Context) {
	if err := sc.chatbotService.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *SessionController) ResetSession(c *gin.Context) {
	sess, err := sc.chatbotService.ResetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (sc *SessionController) ListBookings(c *gin.Context) {
	id := c.Param("id")
	if _, err := sc.chatbotService.GetSession(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	bookings, err := sc.chatbotService.ListBookings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
