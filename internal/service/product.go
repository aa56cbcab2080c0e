package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/slug"
)

// ProductService manages the wholesale catalog: categories, products, and
// bulk imports from the production catalog export.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

// CreateCategoryInput holds the fields for creating a category.
type CreateCategoryInput struct {
	Name         string `json:"name" validate:"required,min=2,max=120"`
	Description  string `json:"description,omitempty"`
	DefaultPrice int64  `json:"default_price" validate:"gte=0"`
	SortOrder    int    `json:"sort_order"`
}

// CreateCategory creates a category with a slug derived from its name.
func (s *ProductService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	now := time.Now().UTC()
	category := &domain.Category{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Slug:         slug.Generate(input.Name),
		Description:  input.Description,
		DefaultPrice: input.DefaultPrice,
		SortOrder:    input.SortOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// GetCategory returns a category by id.
func (s *ProductService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories returns all categories in sort order.
func (s *ProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategoryInput holds the updatable category fields. Nil means unchanged.
type UpdateCategoryInput struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description  *string `json:"description,omitempty"`
	DefaultPrice *int64  `json:"default_price,omitempty" validate:"omitempty,gte=0"`
	SortOrder    *int    `json:"sort_order,omitempty"`
}

// UpdateCategory applies a partial update. Renaming regenerates the slug.
func (s *ProductService) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	if input.Name != nil {
		category.Name = *input.Name
		category.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.DefaultPrice != nil {
		category.DefaultPrice = *input.DefaultPrice
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	category.UpdatedAt = time.Now().UTC()
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes an empty category.
func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// CreateProductInput holds the fields for creating a product. RetailPrice of
// zero means derive it from the category and title.
type CreateProductInput struct {
	SKU         string `json:"sku" validate:"required,min=2,max=60"`
	Title       string `json:"title" validate:"required,min=2,max=300"`
	ShortTitle  string `json:"short_title,omitempty" validate:"max=150"`
	CategoryID  string `json:"category_id" validate:"required"`
	RetailPrice int64  `json:"retail_price" validate:"gte=0"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// CreateProduct creates a product. When no price is given, it is resolved
// from the category's pricing rules and the size detected in the title.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	price := input.RetailPrice
	if price == 0 {
		price = pricing.ResolveRetailPrice(category.Name, input.Title)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		SKU:         strings.TrimSpace(input.SKU),
		Title:       input.Title,
		ShortTitle:  input.ShortTitle,
		CategoryID:  category.ID,
		RetailPrice: price,
		Size:        pricing.DetectSize(input.Title),
		Description: input.Description,
		IsActive:    true,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// GetProduct returns a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns products matching the filter in sort order, with the
// total count for pagination.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

// UpdateProductInput holds the updatable product fields. Nil means unchanged.
type UpdateProductInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=2,max=300"`
	ShortTitle  *string `json:"short_title,omitempty" validate:"omitempty,max=150"`
	CategoryID  *string `json:"category_id,omitempty"`
	RetailPrice *int64  `json:"retail_price,omitempty" validate:"omitempty,gt=0"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

// UpdateProduct applies a partial update. Price changes affect future orders
// only; existing order items keep their snapshot price.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	if input.Title != nil {
		product.Title = *input.Title
		product.Size = pricing.DetectSize(*input.Title)
	}
	if input.ShortTitle != nil {
		product.ShortTitle = *input.ShortTitle
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}
		product.CategoryID = *input.CategoryID
	}
	if input.RetailPrice != nil {
		product.RetailPrice = *input.RetailPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product that no order references. Products with
// order history should be deactivated instead.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// ImportItem is one row of a catalog export.
type ImportItem struct {
	SKU        string `json:"sku" validate:"required"`
	Title      string `json:"title" validate:"required"`
	ShortTitle string `json:"short_title,omitempty"`
	Category   string `json:"category" validate:"required"`
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
	Categories int      `json:"categories"`
	Errors     []string `json:"errors,omitempty"`
}

// Import loads a catalog export: categories are created on demand and each
// product gets its retail price from the size and category pricing rules.
// Rows whose SKU already exists are skipped; a bad row is reported and the
// import continues.
func (s *ProductService) Import(ctx context.Context, items []ImportItem) (*ImportResult, error) {
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("import requires at least one item")
	}

	result := &ImportResult{}
	categoryIDs := make(map[string]string)

	for i, item := range items {
		if item.SKU == "" || item.Title == "" || item.Category == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: sku, title, and category are required", i+1))
			continue
		}

		if existing, err := s.products.GetBySKU(ctx, item.SKU); err == nil && existing != nil {
			result.Skipped++
			continue
		}

		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			id, created, err := s.ensureCategory(ctx, item.Category)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			if created {
				result.Categories++
			}
			categoryID = id
			categoryIDs[item.Category] = id
		}

		now := time.Now().UTC()
		product := &domain.Product{
			ID:          uuid.New().String(),
			SKU:         item.SKU,
			Title:       item.Title,
			ShortTitle:  item.ShortTitle,
			CategoryID:  categoryID,
			RetailPrice: pricing.ResolveRetailPrice(item.Category, item.Title),
			Size:        pricing.DetectSize(item.Title),
			IsActive:    true,
			SortOrder:   i,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.products.Create(ctx, product); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", i+1, item.SKU, err))
			continue
		}
		result.Created++
	}

	s.logger.InfoContext(ctx, "catalog import completed",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Int("categories", result.Categories),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// ensureCategory finds a category by slug or creates it with the category
// pricing default.
func (s *ProductService) ensureCategory(ctx context.Context, name string) (string, bool, error) {
	sl := slug.Generate(name)
	if existing, err := s.categories.GetBySlug(ctx, sl); err == nil && existing != nil {
		return existing.ID, false, nil
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:           uuid.New().String(),
		Name:         name,
		Slug:         sl,
		DefaultPrice: pricing.ResolveRetailPrice(name, ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return "", false, fmt.Errorf("create category %q: %w", name, err)
	}
	return category.ID, true, nil
}
