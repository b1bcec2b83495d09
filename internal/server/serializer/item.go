package serializer

import "github.com/mdouchement/clipvault/internal/model"

// Item serializes the render of an item.
// The image payload is never part of the projection; bytes are served by the
// dedicated download endpoints.
func Item(m *model.Item) map[string]interface{} {
	r := map[string]interface{}{
		"id":           m.ID,
		"user_id":      m.UserID,
		"content_type": m.ContentType,
		"content_text": m.ContentText,
		"created_at":   m.CreatedAt.UTC(),
		"updated_at":   m.UpdatedAt.UTC(),
		"expiry_at":    m.ExpiryAt,
		"is_favorite":  m.IsFavorite,
	}

	if m.ContentType == model.ContentTypeImage {
		r["image_mime"] = m.ImageMime
		r["image_name"] = m.ImageName
	}
	if m.ShareToken != "" {
		r["share_token"] = m.ShareToken
	}

	return r
}

// SharedItem serializes the public render of a shared item.
// Owner and favorite details are not exposed on the anonymous surface.
func SharedItem(m *model.Item) map[string]interface{} {
	r := map[string]interface{}{
		"id":           m.ID,
		"content_type": m.ContentType,
		"content_text": m.ContentText,
		"created_at":   m.CreatedAt.UTC(),
		"updated_at":   m.UpdatedAt.UTC(),
		"expiry_at":    m.ExpiryAt,
	}

	if m.ContentType == model.ContentTypeImage {
		r["image_mime"] = m.ImageMime
		r["image_name"] = m.ImageName
	}

	return r
}
