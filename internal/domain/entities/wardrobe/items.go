// Package wardrobe defines the core clothing domain entities.
package wardrobe

import "time"

// ClothingItem represents a single garment owned by a user.
type ClothingItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Color      string    `json:"color"`
	Brand      string    `json:"brand,omitempty"`
	StyleTags  []string  `json:"styleTags,omitempty"`
	ImagePath  string    `json:"imagePath,omitempty"`
	ThumbPaths []string  `json:"thumbPaths,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Category is a clothing category such as "Tops" or "Bottoms".
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slot string `json:"slot,omitempty"` // top, bottom, footwear, outerwear, accessory
}

// StyleTag is a user-visible style descriptor such as "casual" or "streetwear".
type StyleTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
