package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/server/serializer"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// collection contains all shared-collection handlers.
type collection struct {
	collections service.CollectionService
}

// Create registers a new collection owned by the caller.
func (h *collection) Create(c echo.Context) error {
	var params struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get collection params."))
	}

	record, err := h.collections.Create(currentUser(c), params.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, serializer.Collection(&service.CollectionWithRole{
		Collection: record,
		Role:       "owner",
	}))
}

// List returns the collections the caller owns or is a member of.
func (h *collection) List(c echo.Context) error {
	records, err := h.collections.ListForUser(currentUser(c))
	if err != nil {
		return err
	}

	collections := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		collections = append(collections, serializer.Collection(record))
	}
	return c.JSON(http.StatusOK, echo.Map{"collections": collections})
}

// Invite adds or updates a member by email. Owner only.
func (h *collection) Invite(c echo.Context) error {
	var params struct {
		Email      string `json:"email"`
		Permission string `json:"permission_level"`
	}
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get invite params."))
	}

	membership, err := h.collections.Invite(currentUser(c), c.Param("id"), params.Email, params.Permission)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, serializer.Membership(membership))
}

// RemoveMember revokes a membership. Owner only.
func (h *collection) RemoveMember(c echo.Context) error {
	err := h.collections.RemoveMember(currentUser(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Member removed"})
}

// AddItem associates one of the caller's items with the collection.
func (h *collection) AddItem(c echo.Context) error {
	var params struct {
		ItemID string `json:"item_id"`
	}
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cverror.New("Could not get item params."))
	}
	if params.ItemID == "" {
		return cverror.NewValidation("item_id is required.")
	}

	if err := h.collections.AddItem(currentUser(c), c.Param("id"), params.ItemID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "Item added to collection",
		"collection_id": c.Param("id"),
		"item_id":       params.ItemID,
	})
}

// ListItems returns the collection's non-deleted items, newest first.
func (h *collection) ListItems(c echo.Context) error {
	records, err := h.collections.ListItems(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	items := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		items = append(items, serializer.Item(record))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
