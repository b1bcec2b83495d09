package sweeper_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/sweeper"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperExpirePass(t *testing.T) {
	db, cleanup := setup()
	defer cleanup()
	sweep := newSweeper(db)

	user := createUser(db)
	now := time.Now().UTC()

	expired := createItem(db, user, "expired", timeptr(now.Add(-time.Hour)))
	lively := createItem(db, user, "lively", timeptr(now.Add(time.Hour)))
	forever := createItem(db, user, "forever", nil)

	sweep.RunOnce(now)

	// The expired item became soft-deleted and invisible to the owner.
	_, err := db.FindItemByUserID(expired.ID, user.ID)
	assert.True(t, db.IsNotFound(err))

	record, err := db.FindItem(expired.ID)
	require.NoError(t, err)
	assert.True(t, record.Deleted)
	require.NotNil(t, record.DeletedAt)

	// The others are untouched.
	_, err = db.FindItemByUserID(lively.ID, user.ID)
	assert.NoError(t, err)
	_, err = db.FindItemByUserID(forever.ID, user.ID)
	assert.NoError(t, err)

	// Re-running when nothing newly expired is a no-op.
	sweep.RunOnce(now)
	again, err := db.FindItem(expired.ID)
	require.NoError(t, err)
	assert.Equal(t, record.DeletedAt.Unix(), again.DeletedAt.Unix())
}

func TestSweeperPurgePass(t *testing.T) {
	db, cleanup := setup()
	defer cleanup()
	sweep := newSweeper(db)

	user := createUser(db)
	now := time.Now().UTC()

	old := createItem(db, user, "deleted 25h ago", nil)
	softDelete(db, old, now.Add(-25*time.Hour))
	recent := createItem(db, user, "deleted 1h ago", nil)
	softDelete(db, recent, now.Add(-time.Hour))

	// The old item sits in a collection; purge must cascade.
	collection := &model.Collection{Name: "Team", OwnerID: user.ID}
	require.NoError(t, db.Save(collection))
	require.NoError(t, db.AttachItem(collection.ID, old.ID))

	sweep.RunOnce(now)

	_, err := db.FindItem(old.ID)
	assert.True(t, db.IsNotFound(err), "item past the retention buffer must be purged")

	items, err := db.FindItemsByCollection(collection.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "purge must cascade to collection associations")

	_, err = db.FindItem(recent.ID)
	assert.NoError(t, err, "item within the retention buffer must survive")
}

func TestSweeperQRTokenPass(t *testing.T) {
	db, cleanup := setup()
	defer cleanup()
	sweep := newSweeper(db)

	now := time.Now().UTC()
	lapsed := &model.QRToken{
		Token:       "LapsedToken123456789qqqqqqqqwwww",
		ContentText: "old",
		ExpiresAt:   now.Add(-time.Minute),
	}
	require.NoError(t, db.Save(lapsed))
	valid := &model.QRToken{
		Token:       "ValidToken1234567890qqqqqqqqwwww",
		ContentText: "new",
		ExpiresAt:   now.Add(5 * time.Minute),
	}
	require.NoError(t, db.Save(valid))

	sweep.RunOnce(now)

	_, err := db.FindQRToken(lapsed.Token)
	assert.True(t, db.IsNotFound(err))
	_, err = db.FindQRToken(valid.Token)
	assert.NoError(t, err)
}

func TestSweeperFullLifecycle(t *testing.T) {
	db, cleanup := setup()
	defer cleanup()
	sweep := newSweeper(db)

	user := createUser(db)
	now := time.Now().UTC()

	// Created with one hour to live.
	item := createItem(db, user, "short-lived", timeptr(now.Add(time.Hour)))

	sweep.RunOnce(now)
	_, err := db.FindItemByUserID(item.ID, user.ID)
	require.NoError(t, err, "not expired yet")

	// Two (simulated) hours later it expires.
	sweep.RunOnce(now.Add(2 * time.Hour))
	_, err = db.FindItemByUserID(item.ID, user.ID)
	assert.True(t, db.IsNotFound(err))

	// Still stored until the retention buffer elapses.
	_, err = db.FindItem(item.ID)
	require.NoError(t, err)

	// 25 hours after deletion it is permanently removed.
	sweep.RunOnce(now.Add(27 * time.Hour))
	_, err = db.FindItem(item.ID)
	assert.True(t, db.IsNotFound(err))
}

func setup() (database.Client, func()) {
	tmpfile, err := os.CreateTemp("", "clipvault.*.db")
	if err != nil {
		panic(err)
	}
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	if err != nil {
		panic(err)
	}

	return db, func() {
		db.Close()
		os.RemoveAll(filename)
	}
}

func newSweeper(db database.Client) *sweeper.Sweeper {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return sweeper.New(db, logger, 0, 0)
}

func createUser(db database.Client) *model.User {
	user := &model.User{
		ExternalID: "ext-alice",
		Email:      "alice@nowhere.lan",
	}
	if err := db.Save(user); err != nil {
		panic(err)
	}
	return user
}

func createItem(db database.Client, user *model.User, text string, expiry *time.Time) *model.Item {
	item := &model.Item{
		UserID:      user.ID,
		ContentType: model.ContentTypeText,
		ContentText: text,
		ExpiryAt:    expiry,
	}
	if err := db.Save(item); err != nil {
		panic(err)
	}
	return item
}

func softDelete(db database.Client, item *model.Item, at time.Time) {
	item.Deleted = true
	item.DeletedAt = &at
	if err := db.Save(item); err != nil {
		panic(err)
	}
}

func timeptr(t time.Time) *time.Time {
	return &t
}
