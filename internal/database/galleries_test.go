package database

import (
	"context"
	"testing"
	"time"

	"studiodesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	g := &models.Gallery{
		ID:           "g1",
		Title:        "Spring Editorial",
		Slug:         "spring-editorial",
		Category:     "EDITORIAL",
		MainImageURL: "https://cdn.example.com/main.jpg",
	}
	require.NoError(t, db.CreateGallery(ctx, g, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}))
	require.Len(t, g.SubImages, 3)
	assert.Equal(t, g.MainImageURL, g.SubImages[0].URL)

	// keep created_at ordering deterministic
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, db.CreateGallery(ctx, &models.Gallery{
		ID: "g2", Title: "Beauty", Slug: "beauty", Category: "BEAUTY", MainImageURL: "https://cdn.example.com/c.jpg",
	}, nil))

	got, err := db.GetGallery(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, got.SubImages, 3)
	assert.Equal(t, 2, got.SubImages[2].Position)

	all, err := db.ListGalleries(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "g2", all[0].ID)
	assert.Len(t, all[1].SubImages, 3)

	editorial, err := db.ListGalleries(ctx, "EDITORIAL")
	require.NoError(t, err)
	require.Len(t, editorial, 1)

	require.NoError(t, db.UpdateGallery(ctx, "g1", "Summer Editorial", "summer-editorial", "FASHION"))
	assert.ErrorIs(t, db.UpdateGallery(ctx, "missing", "x", "x", "FASHION"), ErrNotFound)

	got, err = db.GetGallery(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "FASHION", got.Category)
	assert.Equal(t, "summer-editorial", got.Slug)

	deleted, err := db.DeleteGallery(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, deleted.ImageURLs(), 3)

	_, err = db.GetGallery(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.DeleteGallery(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}
