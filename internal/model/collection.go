package model

const (
	// PermissionView allows a member to read the collection's items.
	PermissionView = "view"
	// PermissionUpload allows a member to read items and add their own.
	PermissionUpload = "upload"
	// RoleOwner is the effective role of a collection's owner.
	// Owners have full rights without a membership record.
	RoleOwner = "owner"
)

type (
	// A Collection represents a named group of items shared between users.
	Collection struct {
		Base `msgpack:",inline" storm:"inline"`

		Name    string `json:"name"     msgpack:"name"`
		OwnerID string `json:"owner_id" msgpack:"owner_id" storm:"index"`
	}

	// A Membership grants a user access to a collection.
	// The (CollectionID, UserID) pair is unique.
	Membership struct {
		Base `msgpack:",inline" storm:"inline"`

		CollectionID string `json:"collection_id" msgpack:"collection_id" storm:"index"`
		UserID       string `json:"user_id"       msgpack:"user_id"       storm:"index"`
		Permission   string `json:"permission"    msgpack:"permission"`
	}

	// A CollectionItem associates an item with a collection.
	// The (CollectionID, ItemID) pair is unique.
	CollectionItem struct {
		Base `msgpack:",inline" storm:"inline"`

		CollectionID string `json:"collection_id" msgpack:"collection_id" storm:"index"`
		ItemID       string `json:"item_id"       msgpack:"item_id"       storm:"index"`
	}
)

// ValidPermission returns true for a known membership permission level.
func ValidPermission(permission string) bool {
	return permission == PermissionView || permission == PermissionUpload
}
