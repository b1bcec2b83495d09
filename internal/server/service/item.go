package service

import (
	"time"

	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server/token"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

const (
	// MaxTextBytes is the UTF-8 byte ceiling for text and rich_text items.
	MaxTextBytes = 50 << 10
	// MaxJSONBytes is the UTF-8 byte ceiling for json items.
	MaxJSONBytes = 100 << 10
	// MaxImageBytes is the payload ceiling for image items.
	MaxImageBytes = 5 << 20

	shareAttempts = 4
)

// AllowedImageMimes whitelists the image payloads accepted at creation.
var AllowedImageMimes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

type (
	// An ItemService handles the whole lifecycle of clipboard items.
	ItemService interface {
		Create(user *model.User, params CreateItemParams) (*model.Item, error)
		List(user *model.User, params ListItemsParams) (*ItemPage, error)
		Get(user *model.User, id string) (*model.Item, error)
		GetImage(user *model.User, id string) (*model.Item, error)
		Update(user *model.User, id string, params UpdateItemParams) (*model.Item, error)
		SoftDelete(user *model.User, id string) error
		Share(user *model.User, id string) (*model.Item, error)
		Unshare(user *model.User, id string) error
		GetByShareToken(tok string) (*model.Item, error)
		GetImageByShareToken(tok string) (*model.Item, error)
	}

	// An ImageUpload is a decoded binary payload from the upload boundary.
	ImageUpload struct {
		Data []byte
		Mime string
		Name string
	}

	// CreateItemParams are used to create an item.
	CreateItemParams struct {
		ContentType string     `json:"content_type"`
		ContentText string     `json:"content_text"`
		ExpiryAt    *time.Time `json:"expiry_at"`
		Image       *ImageUpload
	}

	// ListItemsParams narrow and paginate an item listing.
	ListItemsParams struct {
		ContentType   string
		FavoritesOnly bool
		CreatedFrom   time.Time
		CreatedTo     time.Time
		Page          int
		Limit         int
	}

	// An ItemPage is one page of a listing.
	ItemPage struct {
		Items      []*model.Item
		Page       int
		Limit      int
		Total      int
		TotalPages int
	}

	// UpdateItemParams are used to update an item.
	// Nil fields are left untouched.
	UpdateItemParams struct {
		ContentText *string    `json:"content_text"`
		ExpiryAt    *time.Time `json:"expiry_at"`
		IsFavorite  *bool      `json:"is_favorite"`
	}

	itemService struct {
		db database.Client
	}
)

// NewItem returns a new ItemService.
func NewItem(db database.Client) ItemService {
	return &itemService{db: db}
}

func (s *itemService) Create(user *model.User, params CreateItemParams) (*model.Item, error) {
	valid := false
	for _, kind := range model.ContentTypes {
		if params.ContentType == kind {
			valid = true
			break
		}
	}
	if !valid {
		return nil, cverror.NewValidation("Invalid content type. Must be: text, rich_text, json or image.")
	}

	item := &model.Item{
		UserID:      user.ID,
		ContentType: params.ContentType,
		ContentText: params.ContentText,
		ExpiryAt:    params.ExpiryAt,
	}

	if params.ContentType == model.ContentTypeImage {
		if params.Image == nil || len(params.Image.Data) == 0 {
			return nil, cverror.NewValidation("An image file is required for image items.")
		}
		if len(params.Image.Data) > MaxImageBytes {
			return nil, cverror.NewValidation("Image exceeds the 5 MB limit.")
		}
		if !AllowedImageMimes[params.Image.Mime] {
			return nil, cverror.NewValidation("Only PNG, JPEG, GIF, WebP and SVG images are allowed.")
		}

		item.ImageData = params.Image.Data
		item.ImageMime = params.Image.Mime
		item.ImageName = params.Image.Name
		if item.ContentText == "" {
			item.ContentText = params.Image.Name
		}
	} else {
		if err := validateText(params.ContentType, params.ContentText); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(item); err != nil {
		return nil, errors.Wrap(err, "could not persist item")
	}
	return item, nil
}

func (s *itemService) List(user *model.User, params ListItemsParams) (*ItemPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	items, total, err := s.db.FindItemsByParams(user.ID, database.ItemFilters{
		ContentType:   params.ContentType,
		FavoritesOnly: params.FavoritesOnly,
		CreatedFrom:   params.CreatedFrom,
		CreatedTo:     params.CreatedTo,
	}, params.Page, params.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "could not list items")
	}

	return &ItemPage{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: (total + params.Limit - 1) / params.Limit,
	}, nil
}

func (s *itemService) Get(user *model.User, id string) (*model.Item, error) {
	item, err := s.db.FindItemByUserID(id, user.ID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, cverror.NewNotFound("Item not found.")
		}
		return nil, errors.Wrap(err, "could not get item")
	}
	return item, nil
}

func (s *itemService) GetImage(user *model.User, id string) (*model.Item, error) {
	item, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if item.ContentType != model.ContentTypeImage || len(item.ImageData) == 0 {
		return nil, cverror.NewNotFound("Image not found.")
	}
	return item, nil
}

func (s *itemService) Update(user *model.User, id string, params UpdateItemParams) (*model.Item, error) {
	if params.ContentText == nil && params.ExpiryAt == nil && params.IsFavorite == nil {
		return nil, cverror.NewValidation("No fields to update.")
	}

	item, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	if params.ContentText != nil {
		if item.ContentType != model.ContentTypeImage {
			if err := validateText(item.ContentType, *params.ContentText); err != nil {
				return nil, err
			}
		}
		item.ContentText = *params.ContentText
	}
	if params.ExpiryAt != nil {
		if params.ExpiryAt.IsZero() {
			item.ExpiryAt = nil
		} else {
			item.ExpiryAt = params.ExpiryAt
		}
	}
	if params.IsFavorite != nil {
		item.IsFavorite = *params.IsFavorite
	}

	if err := s.db.Save(item); err != nil {
		return nil, errors.Wrap(err, "could not update item")
	}
	return item, nil
}

func (s *itemService) SoftDelete(user *model.User, id string) error {
	item, err := s.Get(user, id)
	if err != nil {
		return err
	}

	t := time.Now().UTC()
	item.Deleted = true
	item.DeletedAt = &t
	return errors.Wrap(s.db.Save(item), "could not soft-delete item")
}

// Share issues a fresh share token for the item. A prior token is always
// overwritten so already-distributed links stop working.
func (s *itemService) Share(user *model.User, id string) (*model.Item, error) {
	item, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	for i := 0; i < shareAttempts; i++ {
		tok := token.SecureToken(token.ShareTokenLength)

		_, err := s.db.FindItemByShareToken(tok)
		if err == nil {
			continue // token collision, try another one
		}
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not check share token uniqueness")
		}

		item.ShareToken = tok
		if err := s.db.Save(item); err != nil {
			return nil, errors.Wrap(err, "could not share item")
		}
		return item, nil
	}

	return nil, cverror.NewConflict("Could not generate a unique share token.")
}

func (s *itemService) Unshare(user *model.User, id string) error {
	item, err := s.Get(user, id)
	if err != nil {
		return err
	}

	item.ShareToken = ""
	return errors.Wrap(s.db.Save(item), "could not unshare item")
}

// GetByShareToken is the public lookup behind share links.
// A reachable but lapsed item reports Gone, not NotFound, so clients can
// tell an expired link from one that never existed.
func (s *itemService) GetByShareToken(tok string) (*model.Item, error) {
	if tok == "" {
		return nil, cverror.NewNotFound("Shared item not found.")
	}

	item, err := s.db.FindItemByShareToken(tok)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, cverror.NewNotFound("Shared item not found.")
		}
		return nil, errors.Wrap(err, "could not get shared item")
	}

	if item.Expired(time.Now()) {
		return nil, cverror.NewGone("This shared item has expired.")
	}
	return item, nil
}

func (s *itemService) GetImageByShareToken(tok string) (*model.Item, error) {
	item, err := s.GetByShareToken(tok)
	if err != nil {
		return nil, err
	}
	if item.ContentType != model.ContentTypeImage || len(item.ImageData) == 0 {
		return nil, cverror.NewNotFound("Image not found.")
	}
	return item, nil
}

func validateText(contentType, text string) error {
	if text == "" {
		return cverror.NewValidation("content_text is required for non-image items.")
	}

	limit := MaxTextBytes
	if contentType == model.ContentTypeJSON {
		limit = MaxJSONBytes
	}
	if len(text) > limit {
		return cverror.NewValidation("Content exceeds the size limit.")
	}

	if contentType == model.ContentTypeJSON {
		if err := fastjson.Validate(text); err != nil {
			return cverror.NewValidation("Content is not valid JSON.")
		}
	}
	return nil
}
