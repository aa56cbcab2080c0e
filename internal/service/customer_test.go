package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	providermock "github.com/erinb-maker-radio/banwell-wholesale/internal/provider/mock"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

type customerFixture struct {
	svc       *CustomerService
	customers *mockCustomerRepository
	comms     *mockCommunicationRepository
	email     *capturingSender
	push      *capturingSender
}

func newCustomerFixture() *customerFixture {
	customers := new(mockCustomerRepository)
	comms := new(mockCommunicationRepository)
	dispatcher, email, push := newTestDispatcher()
	cfg := CheckoutConfig{BaseURL: "https://wholesale.example.com", AdminEmail: "owner@example.com"}
	svc := NewCustomerService(cfg, customers, comms, providermock.New(), dispatcher, newTestLogger())
	return &customerFixture{svc: svc, customers: customers, comms: comms, email: email, push: push}
}

func TestCreateCustomer_Success(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	f.customers.On("Create", ctx, mock.AnythingOfType("*domain.Customer")).Return(nil)

	customer, err := f.svc.Create(ctx, CreateCustomerInput{
		Email:        " Buyer@ShopCo.com ",
		BusinessName: "Shop Co",
		ContactName:  "Pat Lee",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.Equal(t, "buyer@shopco.com", customer.Email)
	assert.Equal(t, domain.CustomerStatusActive, customer.Status)
	assert.Equal(t, pricing.TierAuto, customer.DiscountTier)
	assert.Equal(t, "mock-customer-buyer@shopco.com", customer.ProviderCustomerID)

	emails := f.email.intents()
	require.Len(t, emails, 1)
	assert.Equal(t, "owner@example.com", emails[0].Recipient)
	assert.Contains(t, emails[0].Subject, "New Wholesale Customer: Shop Co")
	pushes := f.push.intents()
	require.Len(t, pushes, 1)
	assert.Contains(t, pushes[0].Subject, "New Customer: Shop Co")
}

func TestCreateCustomer_UnknownTier(t *testing.T) {
	f := newCustomerFixture()

	_, err := f.svc.Create(context.Background(), CreateCustomerInput{
		Email:        "buyer@shopco.com",
		BusinessName: "Shop Co",
		ContactName:  "Pat Lee",
		DiscountTier: "tier9",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateCustomer_PinTier(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)
	f.customers.On("Update", ctx, mock.AnythingOfType("*domain.Customer")).Return(nil)

	customer, err := f.svc.Update(ctx, "cust-1", UpdateCustomerInput{
		DiscountTier: strPtr("tier2"),
		Status:       strPtr(domain.CustomerStatusInactive),
	})

	require.NoError(t, err)
	assert.Equal(t, pricing.Tier2, customer.DiscountTier)
	assert.Equal(t, domain.CustomerStatusInactive, customer.Status)
}

func TestUpdateCustomer_InvalidStatus(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)

	_, err := f.svc.Update(ctx, "cust-1", UpdateCustomerInput{Status: strPtr("banned")})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLogCommunication_Success(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	var gotComm *domain.Communication
	f.comms.On("Create", ctx, mock.AnythingOfType("*domain.Communication")).
		Run(func(args mock.Arguments) {
			gotComm = args.Get(1).(*domain.Communication)
		}).
		Return(nil)

	comm, err := f.svc.LogCommunication(ctx, "cust-1", LogCommunicationInput{
		Type:    domain.CommunicationTypeCall,
		Subject: "Spring line preview",
		Content: "Discussed the spring catalog, expects a reorder in March.",
	})

	require.NoError(t, err)
	assert.Equal(t, "cust-1", comm.CustomerID)
	assert.Equal(t, "admin", comm.LoggedBy)
	assert.False(t, comm.Date.IsZero())
	assert.Equal(t, comm, gotComm)
}

func TestLogCommunication_InvalidType(t *testing.T) {
	f := newCustomerFixture()

	_, err := f.svc.LogCommunication(context.Background(), "cust-1", LogCommunicationInput{Type: "carrier-pigeon"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.comms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
