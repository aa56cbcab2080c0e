package domain

import "time"

// Category represents a product category with a default wholesale retail price.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	DefaultPrice int64     `json:"default_price"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Product represents a catalog item. RetailPrice is the authoritative unit
// price in cents; checkout never trusts a client-supplied price.
type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Title       string    `json:"title"`
	ShortTitle  string    `json:"short_title,omitempty"`
	CategoryID  string    `json:"category_id"`
	RetailPrice int64     `json:"retail_price"`
	Size        string    `json:"size,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName returns the short title when set, the full title otherwise.
func (p *Product) DisplayName() string {
	if p.ShortTitle != "" {
		return p.ShortTitle
	}
	return p.Title
}
