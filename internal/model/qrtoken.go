package model

import "time"

// A QRToken represents a short-lived content snapshot for device-to-device
// transfer. It copies the content at issue time and is not tied to any item:
// deleting the source item does not invalidate an already-issued token.
type QRToken struct {
	Base `msgpack:",inline" storm:"inline"`

	Token       string    `json:"token"        msgpack:"token" storm:"unique"`
	ContentText string    `json:"content_text" msgpack:"content_text"`
	ExpiresAt   time.Time `json:"expires_at"   msgpack:"expires_at"`
}

// Expired returns true once the token has lapsed.
func (m *QRToken) Expired(now time.Time) bool {
	return m.ExpiresAt.Before(now)
}
