package database

import (
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range []interface{}{
		&model.User{},
		&model.Item{},
		&model.Collection{},
		&model.Membership{},
		&model.CollectionItem{},
		&model.QRToken{},
	} {
		if err := db.Init(m); err != nil {
			return errors.Wrap(err, "could not init index")
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range []interface{}{
		&model.User{},
		&model.Item{},
		&model.Collection{},
		&model.Membership{},
		&model.CollectionItem{},
		&model.QRToken{},
	} {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrap(err, "could not reindex")
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is a uniqueness violation error.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

//
// Users
//

// FindUserByEmail returns the user for the given email.
func (c *strm) FindUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	return &user, nil
}

// FindUserByExternalID returns the user for the given identity-provider id.
func (c *strm) FindUserByExternalID(externalID string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ExternalID", externalID, &user); err != nil {
		return nil, errors.Wrap(err, "find user by external id")
	}
	return &user, nil
}

//
// Items
//

// FindItem returns the item for the given id (UUID) whatever its state.
func (c *strm) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.db.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItemByUserID returns the non-deleted item for the given id and user id.
func (c *strm) FindItemByUserID(id, userID string) (*model.Item, error) {
	var item model.Item
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID), q.Eq("Deleted", false)).First(&item)
	if err != nil {
		return nil, errors.Wrap(err, "could not find item by user id")
	}
	return &item, nil
}

// FindItemsByParams returns one page of the user's non-deleted items,
// newest first, and the total number of matching records.
func (c *strm) FindItemsByParams(userID string, filters ItemFilters, page, limit int) ([]*model.Item, int, error) {
	query := []q.Matcher{q.Eq("UserID", userID), q.Eq("Deleted", false)}

	if filters.ContentType != "" {
		query = append(query, q.Eq("ContentType", filters.ContentType))
	}
	if filters.FavoritesOnly {
		query = append(query, q.Eq("IsFavorite", true))
	}
	if !filters.CreatedFrom.IsZero() {
		query = append(query, q.Gte("CreatedAt", filters.CreatedFrom))
	}
	if !filters.CreatedTo.IsZero() {
		query = append(query, q.Lte("CreatedAt", filters.CreatedTo))
	}

	total, err := c.db.Select(query...).Count(&model.Item{})
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not count items")
	}

	items := make([]*model.Item, 0)
	err = c.db.Select(query...).
		OrderBy("CreatedAt").Reverse().
		Skip((page - 1) * limit).Limit(limit).
		Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, 0, errors.Wrap(err, "could not find items")
	}

	return items, total, nil
}

// FindItemByShareToken returns the non-deleted item carrying the given share token.
func (c *strm) FindItemByShareToken(token string) (*model.Item, error) {
	var item model.Item
	err := c.db.Select(q.Eq("ShareToken", token), q.Eq("Deleted", false)).First(&item)
	if err != nil {
		return nil, errors.Wrap(err, "could not find item by share token")
	}
	return &item, nil
}

// ExpireItems soft-deletes every non-deleted item whose expiry date is reached.
func (c *strm) ExpireItems(now time.Time) (int, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(q.Eq("Deleted", false)).Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not find expirable items")
	}

	var n int
	for _, item := range items {
		if !item.Expired(now) {
			continue
		}

		t := now
		item.Deleted = true
		item.DeletedAt = &t
		if err := c.Save(item); err != nil {
			return n, errors.Wrap(err, "could not expire item")
		}
		n++
	}
	return n, nil
}

// PurgeItems permanently removes every item soft-deleted before the cutoff,
// along with its collection associations.
func (c *strm) PurgeItems(cutoff time.Time) (int, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(q.Eq("Deleted", true)).Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not find purgeable items")
	}

	var n int
	for _, item := range items {
		if item.DeletedAt == nil || !item.DeletedAt.Before(cutoff) {
			continue
		}

		err := c.db.Select(q.Eq("ItemID", item.ID)).Delete(&model.CollectionItem{})
		if err != nil && !c.IsNotFound(err) {
			return n, errors.Wrap(err, "could not detach purged item")
		}
		if err := c.db.DeleteStruct(item); err != nil {
			return n, errors.Wrap(err, "could not purge item")
		}
		n++
	}
	return n, nil
}

//
// Collections
//

// FindCollection returns the collection for the given id (UUID).
func (c *strm) FindCollection(id string) (*model.Collection, error) {
	var collection model.Collection
	if err := c.db.One("ID", id, &collection); err != nil {
		return nil, errors.Wrap(err, "could not find collection")
	}
	return &collection, nil
}

// FindCollectionsByOwner returns all collections owned by the given user, newest first.
func (c *strm) FindCollectionsByOwner(userID string) ([]*model.Collection, error) {
	collections := make([]*model.Collection, 0)
	err := c.db.Select(q.Eq("OwnerID", userID)).OrderBy("CreatedAt").Reverse().Find(&collections)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find collections by owner")
	}
	return collections, nil
}

// FindMembership returns the membership for the given collection and user.
func (c *strm) FindMembership(collectionID, userID string) (*model.Membership, error) {
	var membership model.Membership
	err := c.db.Select(q.Eq("CollectionID", collectionID), q.Eq("UserID", userID)).First(&membership)
	if err != nil {
		return nil, errors.Wrap(err, "could not find membership")
	}
	return &membership, nil
}

// FindMembershipsByUser returns all memberships held by the given user.
func (c *strm) FindMembershipsByUser(userID string) ([]*model.Membership, error) {
	memberships := make([]*model.Membership, 0)
	err := c.db.Select(q.Eq("UserID", userID)).Find(&memberships)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find memberships by user")
	}
	return memberships, nil
}

// DeleteMembership removes the membership for the given collection and user.
func (c *strm) DeleteMembership(collectionID, userID string) error {
	err := c.db.Select(q.Eq("CollectionID", collectionID), q.Eq("UserID", userID)).Delete(&model.Membership{})
	return errors.Wrap(err, "could not delete membership")
}

// AttachItem associates an item with a collection.
// Attaching an already-associated item is a no-op.
func (c *strm) AttachItem(collectionID, itemID string) error {
	var association model.CollectionItem
	err := c.db.Select(q.Eq("CollectionID", collectionID), q.Eq("ItemID", itemID)).First(&association)
	if err == nil {
		return nil
	}
	if !c.IsNotFound(err) {
		return errors.Wrap(err, "could not check item association")
	}

	return c.Save(&model.CollectionItem{
		CollectionID: collectionID,
		ItemID:       itemID,
	})
}

// FindItemsByCollection returns all non-deleted items associated with the
// given collection, newest first.
func (c *strm) FindItemsByCollection(collectionID string) ([]*model.Item, error) {
	associations := make([]*model.CollectionItem, 0)
	err := c.db.Select(q.Eq("CollectionID", collectionID)).Find(&associations)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find collection associations")
	}

	items := make([]*model.Item, 0, len(associations))
	for _, association := range associations {
		var item model.Item
		if err := c.db.One("ID", association.ItemID, &item); err != nil {
			if c.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "could not find collection item")
		}
		if item.Deleted {
			continue
		}
		items = append(items, &item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(*items[j].CreatedAt)
	})
	return items, nil
}

//
// QR tokens
//

// FindQRToken returns the record for the given token.
func (c *strm) FindQRToken(token string) (*model.QRToken, error) {
	var qrtoken model.QRToken
	if err := c.db.One("Token", token, &qrtoken); err != nil {
		return nil, errors.Wrap(err, "could not find qr token")
	}
	return &qrtoken, nil
}

// RemoveQRToken removes from database the given token.
func (c *strm) RemoveQRToken(token string) error {
	err := c.db.Select(q.Eq("Token", token)).Delete(&model.QRToken{})
	return errors.Wrap(err, "could not remove qr token")
}

// RevokeExpiredQRTokens removes from database all lapsed tokens.
func (c *strm) RevokeExpiredQRTokens(now time.Time) (int, error) {
	qrtokens := make([]*model.QRToken, 0)
	err := c.db.All(&qrtokens)
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not list qr tokens")
	}

	var n int
	for _, qrtoken := range qrtokens {
		if !qrtoken.Expired(now) {
			continue
		}
		if err := c.db.DeleteStruct(qrtoken); err != nil {
			return n, errors.Wrap(err, "could not revoke qr token")
		}
		n++
	}
	return n, nil
}
