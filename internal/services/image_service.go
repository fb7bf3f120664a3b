package services

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/careerpoint/institute-api/internal/storage"
)

// Photo uploads larger than this edge are scaled down before storage
const maxPhotoEdge = 800

// ImageService processes and stores uploaded photos
type ImageService struct {
	store storage.Storage
}

// NewImageService creates a new image service
func NewImageService(store storage.Storage) *ImageService {
	return &ImageService{store: store}
}

// SavePhoto validates, resizes and stores an uploaded photo, returning its
// storage-relative path.
func (s *ImageService) SavePhoto(dir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", ValidationError("unsupported photo format %q", ext)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", ValidationError("invalid image: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPhotoEdge || bounds.Dy() > maxPhotoEdge {
		img = imaging.Fit(img, maxPhotoEdge, maxPhotoEdge, imaging.Lanczos)
	}

	format := imaging.JPEG
	if ext == ".png" {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return s.store.Save(dir, filename, &buf)
}

// DeletePhoto removes a stored photo
func (s *ImageService) DeletePhoto(path string) error {
	if path == "" {
		return nil
	}
	return s.store.Delete(path)
}
