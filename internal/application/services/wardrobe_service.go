package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/media"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	wardrobepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/security"
)

// ItemInput carries the user-editable fields of a clothing item. The
// photo is an optional base64 data URL.
type ItemInput struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Color       string   `json:"color,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	StyleTags   []string `json:"styleTags,omitempty"`
	PhotoBase64 string   `json:"photoBase64,omitempty"`
}

// WardrobeService manages clothing items and their photos.
type WardrobeService struct {
	items   *wardrobepersist.ItemRepository
	catalog *wardrobepersist.CatalogRepository
	images  *media.ImageProcessor
	logger  *logging.ChanneledLogger
}

// NewWardrobeService creates the wardrobe management service.
func NewWardrobeService(items *wardrobepersist.ItemRepository, catalog *wardrobepersist.CatalogRepository,
	images *media.ImageProcessor, logger *logging.ChanneledLogger) *WardrobeService {
	return &WardrobeService{items: items, catalog: catalog, images: images, logger: logger}
}

// AddItem creates a clothing item, processing the photo first so a
// failed upload never leaves a half-created item behind.
func (s *WardrobeService) AddItem(ctx context.Context, userID string, input ItemInput) (*wardrobe.ClothingItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item := &wardrobe.ClothingItem{
		ID:        security.GenerateULID(),
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Category:  input.Category,
		Color:     input.Color,
		Brand:     input.Brand,
		StyleTags: input.StyleTags,
	}

	if input.PhotoBase64 != "" {
		imagePath, thumbPaths, err := s.images.ProcessItemPhoto(input.PhotoBase64, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to process item photo: %w", err)
		}
		item.ImagePath = imagePath
		item.ThumbPaths = thumbPaths
	}

	if err := s.items.Create(ctx, item); err != nil {
		if item.ImagePath != "" {
			if cleanupErr := s.images.DeleteItemPhotos(item.ImagePath, item.ThumbPaths); cleanupErr != nil {
				s.logger.Wardrobe().Warn("Failed to clean up photos after create failure", "itemId", item.ID, "error", cleanupErr.Error())
			}
		}
		return nil, err
	}

	s.logger.Wardrobe().Info("Clothing item added", "userId", userID, "itemId", item.ID, "category", item.Category)
	return item, nil
}

// UpdateItem replaces the editable fields of an existing item. A new
// photo replaces the old one and its thumbnails.
func (s *WardrobeService) UpdateItem(ctx context.Context, userID, itemID string, input ItemInput) (*wardrobe.ClothingItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("clothing item %s not found", itemID)
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Category = input.Category
	item.Color = input.Color
	item.Brand = input.Brand
	item.StyleTags = input.StyleTags

	if input.PhotoBase64 != "" {
		oldImage, oldThumbs := item.ImagePath, item.ThumbPaths
		imagePath, thumbPaths, err := s.images.ProcessItemPhoto(input.PhotoBase64, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to process item photo: %w", err)
		}
		item.ImagePath = imagePath
		item.ThumbPaths = thumbPaths
		if err := s.images.DeleteItemPhotos(oldImage, oldThumbs); err != nil {
			s.logger.Wardrobe().Warn("Failed to remove replaced photos", "itemId", item.ID, "error", err.Error())
		}
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Wardrobe().Info("Clothing item updated", "userId", userID, "itemId", item.ID)
	return item, nil
}

// RemoveItem deletes an item and its photos.
func (s *WardrobeService) RemoveItem(ctx context.Context, userID, itemID string) error {
	item, err := s.items.FindByID(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("clothing item %s not found", itemID)
	}

	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.images.DeleteItemPhotos(item.ImagePath, item.ThumbPaths); err != nil {
		s.logger.Wardrobe().Warn("Failed to remove photos for deleted item", "itemId", itemID, "error", err.Error())
	}

	s.logger.Wardrobe().Info("Clothing item removed", "userId", userID, "itemId", itemID)
	return nil
}

// ListItems returns the user's full wardrobe, newest first.
func (s *WardrobeService) ListItems(ctx context.Context, userID string) ([]*wardrobe.ClothingItem, error) {
	return s.items.FindByUser(ctx, userID)
}

// GetItem returns a single item, or nil when it does not exist.
func (s *WardrobeService) GetItem(ctx context.Context, userID, itemID string) (*wardrobe.ClothingItem, error) {
	return s.items.FindByID(ctx, userID, itemID)
}

// ListCategories returns the shared category catalog.
func (s *WardrobeService) ListCategories(ctx context.Context) ([]*wardrobe.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// ListStyleTags returns the shared style tag catalog.
func (s *WardrobeService) ListStyleTags(ctx context.Context) ([]*wardrobe.StyleTag, error) {
	return s.catalog.ListStyleTags(ctx)
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return fmt.Errorf("item category is required")
	}
	return nil
}
