package model_test

import (
	"testing"
	"time"

	"github.com/mdouchement/clipvault/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestItemExpired(t *testing.T) {
	now := time.Now().UTC()

	item := &model.Item{}
	assert.False(t, item.Expired(now), "no expiry date")

	past := now.Add(-time.Minute)
	item.ExpiryAt = &past
	assert.True(t, item.Expired(now))

	future := now.Add(time.Minute)
	item.ExpiryAt = &future
	assert.False(t, item.Expired(now))

	// An item expiring exactly now is already expired.
	exact := now
	item.ExpiryAt = &exact
	assert.True(t, item.Expired(now))
}
