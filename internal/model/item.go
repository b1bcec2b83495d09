package model

import "time"

const (
	// ContentTypeText is a plain text clipboard item.
	ContentTypeText = "text"
	// ContentTypeRichText is a rich text clipboard item.
	ContentTypeRichText = "rich_text"
	// ContentTypeJSON is a JSON clipboard item.
	ContentTypeJSON = "json"
	// ContentTypeImage is a binary image clipboard item.
	ContentTypeImage = "image"
)

// ContentTypes lists all supported clipboard item kinds.
var ContentTypes = []string{ContentTypeText, ContentTypeRichText, ContentTypeJSON, ContentTypeImage}

// An Item represents a stored clipboard entry.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID      string `json:"user_id"      msgpack:"user_id"      storm:"index"`
	ContentType string `json:"content_type" msgpack:"content_type" storm:"index"`
	ContentText string `json:"content_text" msgpack:"content_text"`

	// Image payload, only populated for ContentTypeImage.
	// Never rendered in listing projections.
	ImageData []byte `json:"-"          msgpack:"image_data"`
	ImageMime string `json:"image_mime" msgpack:"image_mime"`
	ImageName string `json:"image_name" msgpack:"image_name"`

	ExpiryAt   *time.Time `json:"expiry_at"   msgpack:"expiry_at"`
	IsFavorite bool       `json:"is_favorite" msgpack:"is_favorite" storm:"index"`

	// Soft-delete marker. Deleted mirrors DeletedAt for indexed lookups,
	// DeletedAt keeps the timestamp the purge retention is computed from.
	Deleted   bool       `json:"-"          msgpack:"deleted"    storm:"index"`
	DeletedAt *time.Time `json:"deleted_at" msgpack:"deleted_at"`

	// ShareToken grants unauthenticated read access when non-empty.
	ShareToken string `json:"-" msgpack:"share_token" storm:"index"`
}

// Expired returns true if the item carries an expiry date at or before now.
func (m *Item) Expired(now time.Time) bool {
	return m.ExpiryAt != nil && !m.ExpiryAt.After(now)
}
