package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// CurationService manages the per-customer curated catalogs the admin builds
// for key accounts.
type CurationService struct {
	curated   repository.CuratedProductRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	logger    *slog.Logger
}

// NewCurationService creates a new curation service.
func NewCurationService(
	curated repository.CuratedProductRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *CurationService {
	return &CurationService{
		curated:   curated,
		customers: customers,
		products:  products,
		logger:    logger,
	}
}

// ListCurated returns the customer's curated catalog in sort order.
func (s *CurationService) ListCurated(ctx context.Context, customerID string) ([]domain.CuratedProduct, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return s.curated.ListByCustomer(ctx, customerID)
}

// AddCurated appends products to the customer's curated catalog. Products
// already curated are skipped; unknown product IDs fail the whole request.
func (s *CurationService) AddCurated(ctx context.Context, customerID string, productIDs []string) ([]domain.CuratedProduct, error) {
	if len(productIDs) == 0 {
		return nil, apperrors.InvalidInput("product_ids must not be empty")
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}

	now := time.Now().UTC()
	entries := make([]domain.CuratedProduct, len(productIDs))
	for i, productID := range productIDs {
		if _, ok := known[productID]; !ok {
			return nil, apperrors.NotFound("product", productID)
		}
		entries[i] = domain.CuratedProduct{
			ID:         uuid.New().String(),
			CustomerID: customerID,
			ProductID:  productID,
			SortOrder:  i,
			CreatedAt:  now,
		}
	}

	if err := s.curated.Add(ctx, entries); err != nil {
		return nil, err
	}
	return s.curated.ListByCustomer(ctx, customerID)
}

// RemoveCurated deletes one product from the customer's curated catalog.
func (s *CurationService) RemoveCurated(ctx context.Context, customerID, productID string) error {
	if err := s.curated.Remove(ctx, customerID, productID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "curated product removed",
		slog.String("customer_id", customerID),
		slog.String("product_id", productID),
	)
	return nil
}
