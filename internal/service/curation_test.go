package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

type curationFixture struct {
	svc       *CurationService
	curated   *mockCuratedRepository
	customers *mockCustomerRepository
	products  *mockProductRepository
}

func newCurationFixture() *curationFixture {
	curated := new(mockCuratedRepository)
	customers := new(mockCustomerRepository)
	products := new(mockProductRepository)
	svc := NewCurationService(curated, customers, products, newTestLogger())
	return &curationFixture{svc: svc, curated: curated, customers: customers, products: products}
}

func TestListCurated_ReturnsEntriesInOrder(t *testing.T) {
	f := newCurationFixture()
	ctx := context.Background()

	entries := []domain.CuratedProduct{
		{ID: "cur-1", CustomerID: "cust-1", ProductID: "prod-1", SortOrder: 0},
		{ID: "cur-2", CustomerID: "cust-1", ProductID: "prod-2", SortOrder: 1},
	}
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.curated.On("ListByCustomer", ctx, "cust-1").Return(entries, nil)

	got, err := f.svc.ListCurated(ctx, "cust-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "prod-1", got[0].ProductID)
}

func TestListCurated_UnknownCustomer(t *testing.T) {
	f := newCurationFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-x").Return(nil, apperrors.NotFound("customer", "cust-x"))

	_, err := f.svc.ListCurated(ctx, "cust-x")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.curated.AssertNotCalled(t, "ListByCustomer", mock.Anything, mock.Anything)
}

func TestAddCurated_BuildsOrderedEntries(t *testing.T) {
	f := newCurationFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-1", "prod-2"}).Return(testProducts(), nil)

	var added []domain.CuratedProduct
	f.curated.On("Add", ctx, mock.AnythingOfType("[]domain.CuratedProduct")).
		Run(func(args mock.Arguments) {
			added = args.Get(1).([]domain.CuratedProduct)
		}).
		Return(nil)
	f.curated.On("ListByCustomer", ctx, "cust-1").Return([]domain.CuratedProduct{
		{ID: "cur-1", CustomerID: "cust-1", ProductID: "prod-1", SortOrder: 0},
		{ID: "cur-2", CustomerID: "cust-1", ProductID: "prod-2", SortOrder: 1},
	}, nil)

	got, err := f.svc.AddCurated(ctx, "cust-1", []string{"prod-1", "prod-2"})

	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 0, added[0].SortOrder)
	assert.Equal(t, 1, added[1].SortOrder)
	assert.Equal(t, "cust-1", added[0].CustomerID)
	assert.NotEmpty(t, added[0].ID)
	assert.Len(t, got, 2)
}

func TestAddCurated_UnknownProduct(t *testing.T) {
	f := newCurationFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-x"}).Return([]domain.Product{}, nil)

	_, err := f.svc.AddCurated(ctx, "cust-1", []string{"prod-x"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.curated.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAddCurated_EmptyList(t *testing.T) {
	f := newCurationFixture()

	_, err := f.svc.AddCurated(context.Background(), "cust-1", nil)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRemoveCurated_NotFound(t *testing.T) {
	f := newCurationFixture()
	ctx := context.Background()

	f.curated.On("Remove", ctx, "cust-1", "prod-9").Return(apperrors.NotFound("curated product", "prod-9"))

	err := f.svc.RemoveCurated(ctx, "cust-1", "prod-9")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
