package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
	providermock "github.com/erinb-maker-radio/banwell-wholesale/internal/provider/mock"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// failingPaymentProvider simulates a provider outage.
type failingPaymentProvider struct{}

func (failingPaymentProvider) CreateCheckoutLink(context.Context, provider.CheckoutLinkParams) (*provider.CheckoutLink, error) {
	return nil, apperrors.ExternalService("square", "payment link unavailable")
}

func (failingPaymentProvider) EnsureCustomer(context.Context, string, string, string) (string, error) {
	return "", apperrors.ExternalService("square", "customer sync unavailable")
}

type checkoutFixture struct {
	svc       *CheckoutService
	orders    *mockOrderRepository
	products  *mockProductRepository
	customers *mockCustomerRepository
	sequences *mockSequenceRepository
	email     *capturingSender
	push      *capturingSender
}

func newCheckoutFixture() *checkoutFixture {
	return newCheckoutFixtureWithProvider(providermock.New())
}

func newCheckoutFixtureWithProvider(payments provider.PaymentProvider) *checkoutFixture {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	customers := new(mockCustomerRepository)
	sequences := new(mockSequenceRepository)
	dispatcher, email, push := newTestDispatcher()

	cfg := CheckoutConfig{
		BaseURL:    "https://wholesale.example.com",
		AdminEmail: "owner@example.com",
	}
	svc := NewCheckoutService(cfg, orders, products, customers, sequences,
		payments, dispatcher, newTestProducer(), newTestLogger())

	return &checkoutFixture{
		svc:       svc,
		orders:    orders,
		products:  products,
		customers: customers,
		sequences: sequences,
		email:     email,
		push:      push,
	}
}

func testCustomer() *domain.Customer {
	return &domain.Customer{
		ID:           "cust-1",
		Email:        "buyer@shopco.com",
		BusinessName: "Shop Co",
		ContactName:  "Pat Lee",
		Status:       domain.CustomerStatusActive,
		DiscountTier: pricing.TierAuto,
	}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "prod-1", SKU: "SC-15-CARD", Title: "Cardinal Sun Catcher 15 inch", CategoryID: "cat-1", RetailPrice: 15300, IsActive: true},
		{ID: "prod-2", SKU: "GO-SNOW", Title: "Snowflake Glass Ornament", CategoryID: "cat-2", RetailPrice: 3500, IsActive: true},
	}
}

func TestPayNow_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.orders.On("GetByCartReference", ctx, "cart-xyz").Return(nil, apperrors.NotFound("order", "cart-xyz"))
	f.products.On("GetByIDs", ctx, []string{"prod-1", "prod-2"}).Return(testProducts(), nil)
	f.products.On("GetByID", ctx, "prod-1").Return(&testProducts()[0], nil)
	f.products.On("GetByID", ctx, "prod-2").Return(&testProducts()[1], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, time.Now().UTC().Year()).Return(7, nil)
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order"), (*domain.Invoice)(nil), (*domain.Communication)(nil)).Return(nil)
	f.orders.On("SetPaymentSession", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items: []CheckoutItemInput{
			{ProductID: "prod-1", Quantity: 3}, // 45900
			{ProductID: "prod-2", Quantity: 2}, // 7000
		},
		CartReference: "cart-xyz",
	})

	require.NoError(t, err)
	order := res.Order
	assert.Regexp(t, `^BD-\d{4}-007$`, order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, domain.PaymentMethodCard, order.PaymentMethod)
	assert.Equal(t, int64(52900), order.Subtotal)
	// 52900 >= 40000 so tier 1 applies.
	assert.Equal(t, 40, order.DiscountPercent)
	assert.Equal(t, int64(21160), order.DiscountAmount)
	assert.Equal(t, int64(31740), order.Total)
	assert.Equal(t, "cart-xyz", order.CartReference)
	assert.NotEmpty(t, order.SessionReference)
	assert.NotEmpty(t, res.CheckoutURL)
	assert.Equal(t, res.CheckoutURL, order.CheckoutURL)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, int64(15300), order.Items[0].UnitPrice)
	assert.Equal(t, int64(45900), order.Items[0].LineTotal)

	// Owner email, customer confirmation, and one push alert.
	emails := f.email.intents()
	require.Len(t, emails, 2)
	assert.Equal(t, "owner@example.com", emails[0].Recipient)
	assert.Contains(t, emails[0].Subject, "from Shop Co")
	assert.Equal(t, "buyer@shopco.com", emails[1].Recipient)
	assert.Contains(t, emails[1].Subject, "Order Confirmation")
	pushes := f.push.intents()
	require.Len(t, pushes, 1)
	assert.Contains(t, pushes[0].Body, "$317.40")

	f.orders.AssertExpectations(t)
	f.sequences.AssertExpectations(t)
}

func TestPayNow_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	res, err := f.svc.PayNow(context.Background(), CheckoutInput{CustomerID: "cust-1"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayNow_UnknownProduct(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-x"}).Return([]domain.Product{}, nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items:      []CheckoutItemInput{{ProductID: "prod-x", Quantity: 1}},
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPayNow_InactiveProduct(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	inactive := testProducts()[0]
	inactive.IsActive = false
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-1"}).Return([]domain.Product{inactive}, nil)

	_, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items:      []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPayNow_ReplaysExistingCartReference(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	existing := &domain.Order{
		ID:          "order-1",
		OrderNumber: "BD-2026-003",
		CustomerID:  "cust-1",
		Status:      domain.OrderStatusPendingPayment,
		CheckoutURL: "https://pay.example.com/l/order-1",
	}
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.orders.On("GetByCartReference", ctx, "cart-dup").Return(existing, nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID:    "cust-1",
		Items:         []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
		CartReference: "cart-dup",
	})

	require.NoError(t, err)
	assert.Equal(t, "BD-2026-003", res.Order.OrderNumber)
	assert.Equal(t, "https://pay.example.com/l/order-1", res.CheckoutURL)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	// No duplicate notifications on a replay.
	assert.Empty(t, f.email.intents())
}

func TestPayNow_DuplicateRaceReturnsWinner(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	winner := &domain.Order{
		ID:          "order-9",
		OrderNumber: "BD-2026-009",
		CustomerID:  "cust-1",
		CheckoutURL: "https://pay.example.com/l/order-9",
	}
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	// First lookup misses, the insert loses the race, second lookup hits.
	f.orders.On("GetByCartReference", ctx, "cart-race").Return(nil, apperrors.NotFound("order", "cart-race")).Once()
	f.products.On("GetByIDs", ctx, []string{"prod-1"}).Return(testProducts()[:1], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, mock.AnythingOfType("int")).Return(10, nil)
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order"), (*domain.Invoice)(nil), (*domain.Communication)(nil)).
		Return(apperrors.Conflict("order already exists for cart reference cart-race"))
	f.orders.On("GetByCartReference", ctx, "cart-race").Return(winner, nil).Once()

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID:    "cust-1",
		Items:         []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
		CartReference: "cart-race",
	})

	require.NoError(t, err)
	assert.Equal(t, "BD-2026-009", res.Order.OrderNumber)
	assert.Equal(t, "https://pay.example.com/l/order-9", res.CheckoutURL)
}

func TestPayNow_ProviderFailureKeepsOrder(t *testing.T) {
	f := newCheckoutFixtureWithProvider(failingPaymentProvider{})
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.orders.On("GetByCartReference", ctx, "cart-outage").Return(nil, apperrors.NotFound("order", "cart-outage"))
	f.products.On("GetByIDs", ctx, []string{"prod-1"}).Return(testProducts()[:1], nil)
	f.products.On("GetByID", ctx, "prod-1").Return(&testProducts()[0], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, mock.AnythingOfType("int")).Return(3, nil)
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order"), (*domain.Invoice)(nil), (*domain.Communication)(nil)).Return(nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID:    "cust-1",
		Items:         []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
		CartReference: "cart-outage",
	})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
	// The order was committed before the provider call, so the buyer can
	// retry with the same cart reference instead of losing the order.
	f.orders.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*domain.Order"), (*domain.Invoice)(nil), (*domain.Communication)(nil))
	f.orders.AssertNotCalled(t, "SetPaymentSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayNow_RetryAttachesMissingLink(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	// A previous attempt committed the order but the provider call failed,
	// leaving it without a checkout URL.
	stranded := &domain.Order{
		ID:            "order-5",
		OrderNumber:   "BD-2026-005",
		CustomerID:    "cust-1",
		Status:        domain.OrderStatusPendingPayment,
		PaymentMethod: domain.PaymentMethodCard,
		Total:         15300,
	}
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.orders.On("GetByCartReference", ctx, "cart-outage").Return(stranded, nil)
	f.orders.On("SetPaymentSession", ctx, "order-5", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID:    "cust-1",
		Items:         []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
		CartReference: "cart-outage",
	})

	require.NoError(t, err)
	assert.Equal(t, "BD-2026-005", res.Order.OrderNumber)
	assert.NotEmpty(t, res.CheckoutURL)
	assert.Equal(t, res.CheckoutURL, res.Order.CheckoutURL)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertExpectations(t)
}

func TestPayNow_RejectsForeignCartReference(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	other := &domain.Order{
		ID:          "order-7",
		OrderNumber: "BD-2026-007",
		CustomerID:  "cust-other",
		Status:      domain.OrderStatusPendingPayment,
		CheckoutURL: "https://pay.example.com/l/order-7",
	}
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.orders.On("GetByCartReference", ctx, "cart-stolen").Return(other, nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID:    "cust-1",
		Items:         []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
		CartReference: "cart-stolen",
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestInvoice_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	year := time.Now().UTC().Year()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-1"}).Return(testProducts()[:1], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, year).Return(12, nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeInvoice, year).Return(4, nil)

	var gotOrder *domain.Order
	var gotInvoice *domain.Invoice
	var gotComm *domain.Communication
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order"), mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("*domain.Communication")).
		Run(func(args mock.Arguments) {
			gotOrder = args.Get(1).(*domain.Order)
			gotInvoice = args.Get(2).(*domain.Invoice)
			gotComm = args.Get(3).(*domain.Communication)
		}).
		Return(nil)

	res, err := f.svc.RequestInvoice(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items:      []CheckoutItemInput{{ProductID: "prod-1", Quantity: 3}}, // 45900, 40% off
	})

	require.NoError(t, err)
	require.NotNil(t, gotOrder)
	require.NotNil(t, gotInvoice)
	require.NotNil(t, gotComm)

	assert.Equal(t, domain.PaymentMethodInvoice, gotOrder.PaymentMethod)
	assert.Equal(t, "net30", gotOrder.InvoiceTerms)
	assert.Empty(t, gotOrder.SessionReference)

	assert.Regexp(t, `^BDI-\d{4}-004$`, gotInvoice.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusDraft, gotInvoice.Status)
	assert.Equal(t, gotOrder.Total, gotInvoice.Amount)
	assert.Equal(t, gotOrder.CreatedAt.AddDate(0, 0, 30), gotInvoice.DueDate)
	assert.Equal(t, gotOrder.ID, gotInvoice.OrderID)

	assert.Equal(t, domain.CommunicationTypeOrderPlaced, gotComm.Type)
	assert.Contains(t, gotComm.Subject, "placed (invoice)")
	assert.Contains(t, gotComm.Content, gotInvoice.InvoiceNumber)
	assert.Equal(t, "system", gotComm.LoggedBy)

	assert.Equal(t, gotInvoice.InvoiceNumber, res.InvoiceNumber)
	assert.Empty(t, res.CheckoutURL)

	// Notifications still fire for invoice orders.
	assert.Len(t, f.email.intents(), 2)
	assert.Len(t, f.push.intents(), 1)
}

func TestRequestInvoice_SequenceFailure(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	year := time.Now().UTC().Year()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.products.On("GetByIDs", ctx, []string{"prod-1"}).Return(testProducts()[:1], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, year).Return(12, nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeInvoice, year).Return(0, assert.AnError)

	res, err := f.svc.RequestInvoice(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items:      []CheckoutItemInput{{ProductID: "prod-1", Quantity: 1}},
	})

	assert.Nil(t, res)
	assert.Error(t, err)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayNow_PinnedTierCustomer(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	pinned := testCustomer()
	pinned.DiscountTier = pricing.Tier3
	f.customers.On("GetByID", ctx, "cust-1").Return(pinned, nil)
	f.products.On("GetByIDs", ctx, []string{"prod-2"}).Return(testProducts()[1:], nil)
	f.products.On("GetByID", ctx, "prod-2").Return(&testProducts()[1], nil)
	f.sequences.On("Next", ctx, repository.SequenceScopeOrder, mock.AnythingOfType("int")).Return(1, nil)
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order"), (*domain.Invoice)(nil), (*domain.Communication)(nil)).Return(nil)
	f.orders.On("SetPaymentSession", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	res, err := f.svc.PayNow(ctx, CheckoutInput{
		CustomerID: "cust-1",
		Items:      []CheckoutItemInput{{ProductID: "prod-2", Quantity: 1}}, // 3500, way under any threshold
	})

	require.NoError(t, err)
	assert.Equal(t, 55, res.Order.DiscountPercent)
	assert.Equal(t, int64(1925), res.Order.DiscountAmount)
	assert.Equal(t, int64(1575), res.Order.Total)
}
