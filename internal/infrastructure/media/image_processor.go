// Package media handles clothing photo storage and thumbnail generation.
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Thumbnail widths generated for every clothing photo. The 600px variant
// feeds the wardrobe grid, 300px the outfit preview strip.
var thumbnailWidths = []int{600, 300}

var binaryPattern = regexp.MustCompile(`^data:image/\w+;base64,`)

// ImageProcessor stores clothing photos under basePath and derives WebP
// thumbnails from them.
type ImageProcessor struct {
	basePath string
	logger   *logging.ChanneledLogger
}

// NewImageProcessor creates an ImageProcessor rooted at basePath.
func NewImageProcessor(basePath string, logger *logging.ChanneledLogger) *ImageProcessor {
	return &ImageProcessor{basePath: basePath, logger: logger}
}

// ProcessItemPhoto decodes a base64 clothing photo, saves the original
// under items/ and generates WebP thumbnails under thumbs/. Returns the
// relative original path and thumbnail paths.
func (p *ImageProcessor) ProcessItemPhoto(data, itemID string) (string, []string, error) {
	if data == "" {
		return "", nil, fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return "", nil, fmt.Errorf("unsupported image format")
	}

	timestamp := time.Now().UnixMilli()
	filename := fmt.Sprintf("%s-%d.%s", itemID, timestamp, ext)

	itemsDir := filepath.Join(p.basePath, "items")
	thumbsDir := filepath.Join(p.basePath, "thumbs")
	for _, dir := range []string{itemsDir, thumbsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create media directory: %w", err)
		}
	}

	originalPath, err := writeBinaryImage(data, filename, itemsDir)
	if err != nil {
		p.logger.Media().Error("Failed to save clothing photo", "itemId", itemID, "error", err.Error())
		return "", nil, err
	}

	thumbPaths, err := p.generateThumbnails(originalPath, itemID, timestamp, thumbsDir)
	if err != nil {
		os.Remove(originalPath)
		p.logger.Media().Error("Failed to generate thumbnails", "itemId", itemID, "error", err.Error())
		return "", nil, fmt.Errorf("failed to generate thumbnails: %w", err)
	}

	relativeOriginal := "/media/items/" + filename
	relativeThumbs := make([]string, len(thumbPaths))
	for i, thumbPath := range thumbPaths {
		relativeThumbs[i] = "/media/thumbs/" + filepath.Base(thumbPath)
	}

	p.logger.Media().Info("Clothing photo processed",
		"itemId", itemID, "original", relativeOriginal, "thumbnails", len(relativeThumbs))
	return relativeOriginal, relativeThumbs, nil
}

// DeleteItemPhotos removes a clothing photo and its thumbnails. Missing
// files are not an error; a half-deleted item should still be deletable.
func (p *ImageProcessor) DeleteItemPhotos(imagePath string, thumbPaths []string) error {
	if imagePath != "" {
		fullPath := filepath.Join(p.basePath, strings.TrimPrefix(imagePath, "/media/"))
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove clothing photo: %w", err)
		}
	}
	for _, thumb := range thumbPaths {
		fullPath := filepath.Join(p.basePath, strings.TrimPrefix(thumb, "/media/"))
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			p.logger.Media().Warn("Failed to remove thumbnail", "path", thumb, "error", err.Error())
		}
	}
	return nil
}

func (p *ImageProcessor) generateThumbnails(originalPath, itemID string, timestamp int64, thumbsDir string) ([]string, error) {
	file, err := os.Open(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open original file: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	basename := fmt.Sprintf("%s-%d", itemID, timestamp)
	paths := make([]string, len(thumbnailWidths))
	for i, width := range thumbnailWidths {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)
		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))

		if err := webp.Save(thumbPath, resized, &webp.Options{Quality: 85}); err != nil {
			for j := 0; j < i; j++ {
				os.Remove(paths[j])
			}
			return nil, fmt.Errorf("failed to save WebP thumbnail: %w", err)
		}
		paths[i] = thumbPath
	}
	return paths, nil
}

func writeBinaryImage(data, filename, targetDir string) (string, error) {
	if !binaryPattern.MatchString(data) {
		return "", fmt.Errorf("invalid image base64 format")
	}

	decoded, err := base64.StdEncoding.DecodeString(binaryPattern.ReplaceAllString(data, ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return fullPath, nil
}

func extractExtension(data string) string {
	switch {
	case strings.Contains(data, "data:image/png"):
		return "png"
	case strings.Contains(data, "data:image/jpeg"), strings.Contains(data, "data:image/jpg"):
		return "jpg"
	case strings.Contains(data, "data:image/webp"):
		return "webp"
	case strings.Contains(data, "data:image/"):
		return ""
	}
	return ""
}
