package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studiodesk/internal/models"

	"github.com/google/uuid"
)

const galleryColumns = `id, title, slug, category, main_image_url, created_at, updated_at`

// CreateGallery stores the gallery and its images. The main image is kept
// as the first image of the set.
func (db *DB) CreateGallery(ctx context.Context, g *models.Gallery, subImageURLs []string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		g.CreatedAt = now
		g.UpdatedAt = now

		_, err := tx.ExecContext(ctx, `INSERT INTO galleries (`+galleryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Title, g.Slug, g.Category, g.MainImageURL, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert gallery: %w", err)
		}

		urls := append([]string{g.MainImageURL}, subImageURLs...)
		g.SubImages = make([]models.GalleryImage, 0, len(urls))
		for i, u := range urls {
			img := models.GalleryImage{ID: uuid.NewString(), GalleryID: g.ID, URL: u, Position: i}
			_, err := tx.ExecContext(ctx, `INSERT INTO gallery_images (id, gallery_id, url, position) VALUES (?, ?, ?, ?)`,
				img.ID, img.GalleryID, img.URL, img.Position)
			if err != nil {
				return fmt.Errorf("failed to insert gallery image: %w", err)
			}
			g.SubImages = append(g.SubImages, img)
		}
		return nil
	})
}

func (db *DB) GetGallery(ctx context.Context, id string) (*models.Gallery, error) {
	g, err := scanGallery(db.QueryRowContext(ctx, `SELECT `+galleryColumns+` FROM galleries WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get gallery: %w", notFound(err))
	}
	images, err := db.galleryImages(ctx, []string{g.ID})
	if err != nil {
		return nil, err
	}
	g.SubImages = images[g.ID]
	return g, nil
}

// ListGalleries returns galleries newest first, optionally for one category.
func (db *DB) ListGalleries(ctx context.Context, category string) ([]*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list galleries: %w", err)
	}
	defer rows.Close()

	galleries := []*models.Gallery{}
	ids := []string{}
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery: %w", err)
		}
		galleries = append(galleries, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	images, err := db.galleryImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range galleries {
		g.SubImages = images[g.ID]
	}
	return galleries, nil
}

func (db *DB) UpdateGallery(ctx context.Context, id, title, slug, category string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE galleries SET title = ?, slug = ?, category = ?, updated_at = ? WHERE id = ?`,
		title, slug, category, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update gallery: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGallery removes the gallery with its images and returns what was
// removed so the caller can clean up stored objects.
func (db *DB) DeleteGallery(ctx context.Context, id string) (*models.Gallery, error) {
	g, err := db.GetGallery(ctx, id)
	if err != nil {
		return nil, err
	}
	err = db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gallery_images WHERE gallery_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete gallery images: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM galleries WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete gallery: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (db *DB) galleryImages(ctx context.Context, galleryIDs []string) (map[string][]models.GalleryImage, error) {
	out := make(map[string][]models.GalleryImage, len(galleryIDs))
	if len(galleryIDs) == 0 {
		return out, nil
	}

	placeholders := make([]byte, 0, len(galleryIDs)*2)
	args := make([]any, 0, len(galleryIDs))
	for i, id := range galleryIDs {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, gallery_id, url, position FROM gallery_images
		 WHERE gallery_id IN (`+string(placeholders)+`) ORDER BY gallery_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(&img.ID, &img.GalleryID, &img.URL, &img.Position); err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		out[img.GalleryID] = append(out[img.GalleryID], img)
	}
	return out, rows.Err()
}

func scanGallery(r rowScanner) (*models.Gallery, error) {
	var g models.Gallery
	if err := r.Scan(&g.ID, &g.Title, &g.Slug, &g.Category, &g.MainImageURL, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.SubImages = []models.GalleryImage{}
	return &g, nil
}
