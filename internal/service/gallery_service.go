package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"studiodesk/internal/domain"
	"studiodesk/internal/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

type GalleryRequest struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	MainImageURL string   `json:"main_image_url"`
	SubImages    []string `json:"sub_images"`
}

type GalleryUpdate struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

type GalleryService struct {
	store  domain.GalleryStore
	images domain.ImageStore
	logger *zerolog.Logger
}

// NewGalleryService builds the service. images may be nil, which disables
// uploads and object cleanup.
func NewGalleryService(store domain.GalleryStore, images domain.ImageStore, logger *zerolog.Logger) *GalleryService {
	return &GalleryService{store: store, images: images, logger: logger}
}

func validateGalleryFields(title, category string) error {
	if title == "" {
		return invalid("title", "Title is required")
	}
	if !models.IsGalleryCategory(category) {
		return invalid("category", "Invalid category")
	}
	return nil
}

func (s *GalleryService) Create(ctx context.Context, req GalleryRequest) (*models.Gallery, error) {
	trimAll(&req.Title, &req.Category, &req.MainImageURL)
	req.Category = strings.ToUpper(req.Category)
	if err := validateGalleryFields(req.Title, req.Category); err != nil {
		return nil, err
	}
	if req.MainImageURL == "" {
		return nil, invalid("main_image_url", "Main image is required")
	}

	subs := make([]string, 0, len(req.SubImages))
	for _, u := range req.SubImages {
		if u = strings.TrimSpace(u); u != "" && u != req.MainImageURL {
			subs = append(subs, u)
		}
	}

	g := &models.Gallery{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Category:     req.Category,
		MainImageURL: req.MainImageURL,
	}
	if err := s.store.CreateGallery(ctx, g, subs); err != nil {
		return nil, err
	}
	s.logger.Info().Str("gallery_id", g.ID).Str("category", g.Category).Int("images", len(g.SubImages)).Msg("Gallery created")
	return g, nil
}

// List returns galleries newest first. An empty category lists all.
func (s *GalleryService) List(ctx context.Context, category string) ([]*models.Gallery, error) {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category != "" && !models.IsGalleryCategory(category) {
		return nil, invalid("category", "Invalid category")
	}
	return s.store.ListGalleries(ctx, category)
}

func (s *GalleryService) Get(ctx context.Context, id string) (*models.Gallery, error) {
	return s.store.GetGallery(ctx, id)
}

func (s *GalleryService) Update(ctx context.Context, id string, req GalleryUpdate) (*models.Gallery, error) {
	trimAll(&req.Title, &req.Category)
	req.Category = strings.ToUpper(req.Category)
	if err := validateGalleryFields(req.Title, req.Category); err != nil {
		return nil, err
	}
	if err := s.store.UpdateGallery(ctx, id, req.Title, slug.Make(req.Title), req.Category); err != nil {
		return nil, err
	}
	return s.store.GetGallery(ctx, id)
}

// Delete removes the gallery rows, then its stored images. Storage failures
// are logged only.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	g, err := s.store.DeleteGallery(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info().Str("gallery_id", id).Msg("Gallery deleted")

	if s.images == nil {
		return nil
	}
	for _, u := range g.ImageURLs() {
		if err := s.images.Delete(ctx, u); err != nil {
			s.logger.Warn().Err(err).Str("url", u).Msg("Failed to delete gallery image")
		}
	}
	return nil
}

// Upload stores an image and returns its public URL.
func (s *GalleryService) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if s.images == nil {
		return "", ErrUploadsDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", invalid("file", "Only image uploads are allowed")
	}
	url, err := s.images.Upload(ctx, filename, contentType, body)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("url", url).Msg("Image uploaded")
	return url, nil
}
