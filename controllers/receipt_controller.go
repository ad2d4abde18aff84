package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"medbot-backend/failure"
	"medbot-backend/receipt"
)

type ReceiptController struct {
	receipts *receipt.Service
}

func NewReceiptController(receipts *receipt.Service) *ReceiptController {
	return &ReceiptController{receipts: receipts}
}

// Download streams a receipt PDF as an attachment.
func (rc *ReceiptController) Download(c *gin.Context) {
	name := c.Param("name")

	body, err := rc.receipts.Open(c.Request.Context(), name)
	switch {
	case errors.Is(err, receipt.ErrInvalidName), errors.Is(err, receipt.ErrNotFound):
		respondError(c, failure.ReceiptNotFound)
		return
	case err != nil:
		respondError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		_ = c.Error(err)
	}
}
