package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// qr contains the ephemeral transfer token handlers.
type qr struct {
	qrtokens service.QRService
}

// Generate issues a short-lived token carrying a content snapshot.
// The QR code itself is rendered client side from the returned URL.
func (h *qr) Generate(c echo.Context) error {
	var params struct {
		ContentText string `json:"content_text"`
	}
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get QR params."))
	}

	qrtoken, err := h.qrtokens.Issue(params.ContentText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":      qrtoken.Token,
		"expires_at": qrtoken.ExpiresAt,
		"url":        "/qr/" + qrtoken.Token,
	})
}

// Show resolves a token to its content snapshot. No identity required: the
// whole point is pulling content on a second device.
func (h *qr) Show(c echo.Context) error {
	qrtoken, err := h.qrtokens.Resolve(c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"content_text": qrtoken.ContentText,
	})
}
