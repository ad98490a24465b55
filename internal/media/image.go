package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
)

// Image describes a screen background that decoded successfully
type Image struct {
	Path   string
	Format string
	Width  int
	Height int
}

// Probe checks that an image file can be decoded
func Probe(path string) (Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return Image{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// LoadOptional probes every configured image. Images that do not exist are skipped,
// images that exist but cannot be decoded are an error.
func LoadOptional(paths map[string]string) (map[string]Image, error) {
	images := make(map[string]Image, len(paths))
	for screen, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Printf("Image for %s screen not found, skipping: %s", screen, path)
			continue
		}
		img, err := Probe(path)
		if err != nil {
			return nil, err
		}
		images[screen] = img
	}
	return images, nil
}
