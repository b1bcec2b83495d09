package service_test

import (
	"os"
	"strings"
	"testing"

	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCreateTextLimits(t *testing.T) {
	db, user, cleanup := setup()
	defer cleanup()
	items := service.NewItem(db)

	tests := []struct {
		name        string
		contentType string
		text        string
		valid       bool
	}{
		{"text at limit", "text", strings.Repeat("a", service.MaxTextBytes), true},
		{"text over limit", "text", strings.Repeat("a", service.MaxTextBytes+1), false},
		{"rich_text over limit", "rich_text", strings.Repeat("a", service.MaxTextBytes+1), false},
		{"json at limit", "json", `"` + strings.Repeat("a", service.MaxJSONBytes-2) + `"`, true},
		{"json over limit", "json", `"` + strings.Repeat("a", service.MaxJSONBytes-1) + `"`, false},
		// Multi-byte runes count as UTF-8 bytes, not characters.
		{"text multibyte over limit", "text", strings.Repeat("é", service.MaxTextBytes/2+1), false},
		{"empty text", "text", "", false},
		{"malformed json", "json", "{oops", false},
	}

	for _, test := range tests {
		_, err := items.Create(user, service.CreateItemParams{
			ContentType: test.contentType,
			ContentText: test.text,
		})
		if test.valid {
			assert.NoError(t, err, test.name)
		} else {
			assert.True(t, cverror.Is(err, cverror.TagValidation), test.name)
		}
	}
}

func TestItemCreateImageValidation(t *testing.T) {
	db, user, cleanup := setup()
	defer cleanup()
	items := service.NewItem(db)

	// No payload.
	_, err := items.Create(user, service.CreateItemParams{ContentType: "image"})
	assert.True(t, cverror.Is(err, cverror.TagValidation))

	// Over 5 MB.
	_, err = items.Create(user, service.CreateItemParams{
		ContentType: "image",
		Image:       &service.ImageUpload{Data: make([]byte, service.MaxImageBytes+1), Mime: "image/png", Name: "big.png"},
	})
	assert.True(t, cverror.Is(err, cverror.TagValidation))

	// Disallowed MIME type.
	_, err = items.Create(user, service.CreateItemParams{
		ContentType: "image",
		Image:       &service.ImageUpload{Data: []byte("BM..."), Mime: "image/bmp", Name: "old.bmp"},
	})
	assert.True(t, cverror.Is(err, cverror.TagValidation))

	// Accepted payload; content_text defaults to the original filename.
	record, err := items.Create(user, service.CreateItemParams{
		ContentType: "image",
		Image:       &service.ImageUpload{Data: []byte{0x89, 'P', 'N', 'G'}, Mime: "image/png", Name: "shot.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "shot.png", record.ContentText)

	fetched, err := items.GetImage(user, record.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, fetched.ImageData)
	assert.Equal(t, "image/png", fetched.ImageMime)
}

func TestItemGetImageOnTextItem(t *testing.T) {
	db, user, cleanup := setup()
	defer cleanup()
	items := service.NewItem(db)

	record, err := items.Create(user, service.CreateItemParams{ContentType: "text", ContentText: "plain"})
	require.NoError(t, err)

	_, err = items.GetImage(user, record.ID)
	assert.True(t, cverror.Is(err, cverror.TagNotFound))
}

func TestItemListClampsPagination(t *testing.T) {
	db, user, cleanup := setup()
	defer cleanup()
	items := service.NewItem(db)

	_, err := items.Create(user, service.CreateItemParams{ContentType: "text", ContentText: "one"})
	require.NoError(t, err)

	page, err := items.List(user, service.ListItemsParams{Page: -3, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestItemUpdateWhitelist(t *testing.T) {
	db, user, cleanup := setup()
	defer cleanup()
	items := service.NewItem(db)

	record, err := items.Create(user, service.CreateItemParams{ContentType: "text", ContentText: "v1"})
	require.NoError(t, err)

	_, err = items.Update(user, record.ID, service.UpdateItemParams{})
	assert.True(t, cverror.Is(err, cverror.TagValidation))

	text := "v2"
	favorite := true
	updated, err := items.Update(user, record.ID, service.UpdateItemParams{
		ContentText: &text,
		IsFavorite:  &favorite,
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.ContentText)
	assert.True(t, updated.IsFavorite)
	assert.True(t, updated.UpdatedAt.After(*record.CreatedAt) || updated.UpdatedAt.Equal(*record.CreatedAt))

	oversized := strings.Repeat("a", service.MaxTextBytes+1)
	_, err = items.Update(user, record.ID, service.UpdateItemParams{ContentText: &oversized})
	assert.True(t, cverror.Is(err, cverror.TagValidation))
}

func setup() (database.Client, *model.User, func()) {
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

	user := &model.User{
		ExternalID: "ext-alice",
		Email:      "alice@nowhere.lan",
	}
	if err := db.Save(user); err != nil {
		panic(err)
	}

	return db, user, func() {
		db.Close()
		os.RemoveAll(filename)
	}
}
