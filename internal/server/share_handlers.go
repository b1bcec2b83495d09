package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/server/serializer"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// share contains the anonymous read handlers behind share links.
// An expired item reports Gone, a revoked or unknown token NotFound.
type share struct {
	items service.ItemService
}

// Show returns the metadata and text of a shared item.
func (h *share) Show(c echo.Context) error {
	record, err := h.items.GetByShareToken(c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.SharedItem(record))
}

// DownloadImage serves the binary payload of a shared image item.
func (h *share) DownloadImage(c echo.Context) error {
	record, err := h.items.GetImageByShareToken(c.Param("token"))
	if err != nil {
		return err
	}

	name := record.ImageName
	if name == "" {
		name = "image"
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, name))
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, record.ImageMime, record.ImageData)
}
