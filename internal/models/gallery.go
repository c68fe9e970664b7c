package models

import "time"

type Gallery struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Slug         string         `json:"slug"`
	Category     string         `json:"category"`
	MainImageURL string         `json:"main_image_url"`
	SubImages    []GalleryImage `json:"sub_images"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type GalleryImage struct {
	ID        string `json:"id"`
	GalleryID string `json:"gallery_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

// ImageURLs returns the main image followed by the sub images, without duplicates.
func (g *Gallery) ImageURLs() []string {
	seen := make(map[string]struct{}, len(g.SubImages)+1)
	urls := make([]string, 0, len(g.SubImages)+1)
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	add(g.MainImageURL)
	for _, img := range g.SubImages {
		add(img.URL)
	}
	return urls
}
