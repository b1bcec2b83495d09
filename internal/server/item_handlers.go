package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/server/serializer"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// item contains all item handlers.
type item struct {
	items service.ItemService
}

///// Create
////
//

// Create stores a new clipboard item, either text-based (JSON body) or an
// image (multipart form with an `image` file part).
func (h *item) Create(c echo.Context) error {
	var params service.CreateItemParams

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		params.ContentType = c.FormValue("content_type")
		params.ContentText = c.FormValue("content_text")

		if v := c.FormValue("expiry_at"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return cverror.NewValidation("expiry_at must be a RFC3339 timestamp.")
			}
			params.ExpiryAt = &t
		}

		if file, err := c.FormFile("image"); err == nil {
			src, err := file.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, cverror.New("Could not read image upload."))
			}
			defer src.Close()

			data, err := io.ReadAll(io.LimitReader(src, service.MaxImageBytes+1))
			if err != nil {
				return c.JSON(http.StatusBadRequest, cverror.New("Could not read image upload."))
			}

			params.Image = &service.ImageUpload{
				Data: data,
				Mime: file.Header.Get(echo.HeaderContentType),
				Name: file.Filename,
			}
		}
	} else if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get item params."))
	}

	record, err := h.items.Create(currentUser(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, serializer.Item(record))
}

///// List
////
//

// List returns one page of the caller's items, newest first.
// Filters: type, favorites, from, to. The image payload is never included.
func (h *item) List(c echo.Context) error {
	params := service.ListItemsParams{
		ContentType:   c.QueryParam("type"),
		FavoritesOnly: c.QueryParam("favorites") == "true",
	}
	params.Page, _ = strconv.Atoi(c.QueryParam("page"))
	params.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return cverror.NewValidation("from must be a RFC3339 timestamp.")
		}
		params.CreatedFrom = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return cverror.NewValidation("to must be a RFC3339 timestamp.")
		}
		params.CreatedTo = t
	}

	page, err := h.items.List(currentUser(c), params)
	if err != nil {
		return err
	}

	items := make([]map[string]interface{}, 0, len(page.Items))
	for _, record := range page.Items {
		items = append(items, serializer.Item(record))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"pagination": echo.Map{
			"page":        page.Page,
			"limit":       page.Limit,
			"total":       page.Total,
			"total_pages": page.TotalPages,
		},
	})
}

///// Show
////
//

// Show returns the metadata of a single item.
func (h *item) Show(c echo.Context) error {
	record, err := h.items.Get(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.Item(record))
}

// DownloadImage serves the binary payload of an image item.
func (h *item) DownloadImage(c echo.Context) error {
	record, err := h.items.GetImage(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	name := record.ImageName
	if name == "" {
		name = "image"
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, name))
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return c.Blob(http.StatusOK, record.ImageMime, record.ImageData)
}

///// Update
////
//

// Update mutates the whitelisted item fields: content_text, expiry_at, is_favorite.
func (h *item) Update(c echo.Context) error {
	var params service.UpdateItemParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get update params."))
	}

	record, err := h.items.Update(currentUser(c), c.Param("id"), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.Item(record))
}

///// Delete
////
//

// Delete soft-deletes an item. The record stays around for the purge
// retention window but disappears from every read path.
func (h *item) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.items.SoftDelete(currentUser(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item deleted",
		"id":      id,
	})
}

///// Share
////
//

// Share issues a public share link for the item, rotating any prior token.
func (h *item) Share(c echo.Context) error {
	record, err := h.items.Share(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"share_token": record.ShareToken,
		"url":         "/share/" + record.ShareToken,
	})
}

// Unshare revokes the item's share link.
func (h *item) Unshare(c echo.Context) error {
	if err := h.items.Unshare(currentUser(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
