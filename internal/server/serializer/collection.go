package serializer

import (
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// Collection serializes the render of a collection with the caller's role.
func Collection(m *service.CollectionWithRole) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"name":       m.Name,
		"owner_id":   m.OwnerID,
		"created_at": m.CreatedAt.UTC(),
		"role":       m.Role,
	}
}

// Membership serializes the render of a collection membership.
func Membership(m *model.Membership) map[string]interface{} {
	return map[string]interface{}{
		"collection_id": m.CollectionID,
		"user_id":       m.UserID,
		"permission":    m.Permission,
	}
}
