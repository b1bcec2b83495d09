package database

import (
	"time"

	"github.com/mdouchement/clipvault/internal/model"
)

// ItemFilters narrows an item listing.
// Zero values disable the corresponding filter.
type ItemFilters struct {
	ContentType   string
	FavoritesOnly bool
	CreatedFrom   time.Time
	CreatedTo     time.Time
}

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a uniqueness violation error.
		IsAlreadyExists(err error) bool

		UserInteraction
		ItemInteraction
		CollectionInteraction
		QRTokenInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUserByEmail returns the user for the given email.
		FindUserByEmail(email string) (*model.User, error)
		// FindUserByExternalID returns the user for the given identity-provider id.
		FindUserByExternalID(externalID string) (*model.User, error)
	}

	// An ItemInteraction defines all the methods used to interact with item record(s).
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID) whatever its state.
		FindItem(id string) (*model.Item, error)
		// FindItemByUserID returns the non-deleted item for the given id and user id.
		FindItemByUserID(id, userID string) (*model.Item, error)
		// FindItemsByParams returns one page of the user's non-deleted items,
		// newest first, and the total number of matching records.
		FindItemsByParams(userID string, filters ItemFilters, page, limit int) ([]*model.Item, int, error)
		// FindItemByShareToken returns the non-deleted item carrying the given share token.
		FindItemByShareToken(token string) (*model.Item, error)
		// ExpireItems soft-deletes every non-deleted item whose expiry date
		// is reached at the given time. It returns the number of items touched.
		ExpireItems(now time.Time) (int, error)
		// PurgeItems permanently removes every item soft-deleted before the
		// given cutoff, along with its collection associations.
		// It returns the number of items removed.
		PurgeItems(cutoff time.Time) (int, error)
	}

	// A CollectionInteraction defines all the methods used to interact with
	// collections, their members and their items.
	CollectionInteraction interface {
		// FindCollection returns the collection for the given id (UUID).
		FindCollection(id string) (*model.Collection, error)
		// FindCollectionsByOwner returns all collections owned by the given user, newest first.
		FindCollectionsByOwner(userID string) ([]*model.Collection, error)
		// FindMembership returns the membership for the given collection and user.
		FindMembership(collectionID, userID string) (*model.Membership, error)
		// FindMembershipsByUser returns all memberships held by the given user.
		FindMembershipsByUser(userID string) ([]*model.Membership, error)
		// DeleteMembership removes the membership for the given collection and user.
		DeleteMembership(collectionID, userID string) error
		// AttachItem associates an item with a collection.
		// Attaching an already-associated item is a no-op.
		AttachItem(collectionID, itemID string) error
		// FindItemsByCollection returns all non-deleted items associated with
		// the given collection, newest first.
		FindItemsByCollection(collectionID string) ([]*model.Item, error)
	}

	// A QRTokenInteraction defines all the methods used to interact with QR transfer tokens.
	QRTokenInteraction interface {
		// FindQRToken returns the record for the given token.
		FindQRToken(token string) (*model.QRToken, error)
		// RemoveQRToken removes from database the given token.
		RemoveQRToken(token string) error
		// RevokeExpiredQRTokens removes from database all lapsed tokens.
		// It returns the number of tokens removed.
		RevokeExpiredQRTokens(now time.Time) (int, error)
	}
)
