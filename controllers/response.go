package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medbot-backend/failure"
	"medbot-backend/logger"
)

// respondError writes {"error": msg} with the status carried by err.
// Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	code := failure.GetCode(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorWithStack(err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
