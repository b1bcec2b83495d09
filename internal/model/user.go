package model

// A User represents a database record.
// Users are created lazily, the first time the identity boundary hands us
// an external identifier we have never seen.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	// ExternalID is the stable identifier supplied by the identity provider.
	ExternalID string `json:"-"     msgpack:"external_id" storm:"unique"`
	Email      string `json:"email" msgpack:"email"       storm:"index"`
}
