package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/workflow"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// CustomerService manages wholesale accounts and their communication log.
type CustomerService struct {
	cfg        CheckoutConfig
	customers  repository.CustomerRepository
	comms      repository.CommunicationRepository
	payments   provider.PaymentProvider
	dispatcher *notifier.Dispatcher
	logger     *slog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(
	cfg CheckoutConfig,
	customers repository.CustomerRepository,
	comms repository.CommunicationRepository,
	payments provider.PaymentProvider,
	dispatcher *notifier.Dispatcher,
	logger *slog.Logger,
) *CustomerService {
	return &CustomerService{
		cfg:        cfg,
		customers:  customers,
		comms:      comms,
		payments:   payments,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateCustomerInput holds the fields for registering a wholesale account.
type CreateCustomerInput struct {
	Email        string `json:"email" validate:"required,email"`
	BusinessName string `json:"business_name" validate:"required,min=2,max=200"`
	ContactName  string `json:"contact_name" validate:"required,min=2,max=150"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Website      string `json:"website,omitempty"`
	Notes        string `json:"notes,omitempty"`
	DiscountTier string `json:"discount_tier,omitempty"`
}

// Create registers a new wholesale account and, best-effort, its payment
// provider customer record. The owner is notified of every new account.
func (s *CustomerService) Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	tier := pricing.TierAuto
	if input.DiscountTier != "" {
		tier = pricing.TierLevel(input.DiscountTier)
		if !tier.IsValid() {
			return nil, apperrors.InvalidInput("unknown discount tier: " + input.DiscountTier)
		}
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		BusinessName: input.BusinessName,
		ContactName:  input.ContactName,
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Website:      input.Website,
		Notes:        input.Notes,
		Status:       domain.CustomerStatusActive,
		DiscountTier: tier,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.payments != nil {
		providerID, err := s.payments.EnsureCustomer(ctx, customer.Email, customer.BusinessName, "")
		if err != nil {
			s.logger.WarnContext(ctx, "provider customer creation failed, continuing without",
				slog.String("email", customer.Email),
				slog.String("error", err.Error()),
			)
		} else {
			customer.ProviderCustomerID = providerID
		}
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.notifyNewCustomer(ctx, customer)

	return customer, nil
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// GetByEmail returns a customer by email, used by authentication.
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.customers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns customers matching the filter with the total count.
func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, int, error) {
	return s.customers.List(ctx, filter)
}

// UpdateCustomerInput holds the updatable account fields. Nil means unchanged.
type UpdateCustomerInput struct {
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,min=2,max=200"`
	ContactName  *string `json:"contact_name,omitempty" validate:"omitempty,min=2,max=150"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Website      *string `json:"website,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       *string `json:"status,omitempty"`
	DiscountTier *string `json:"discount_tier,omitempty"`
}

// Update applies a partial update to a customer.
func (s *CustomerService) Update(ctx context.Context, id string, input UpdateCustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	if input.BusinessName != nil {
		customer.BusinessName = *input.BusinessName
	}
	if input.ContactName != nil {
		customer.ContactName = *input.ContactName
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.State != nil {
		customer.State = *input.State
	}
	if input.Zip != nil {
		customer.Zip = *input.Zip
	}
	if input.Website != nil {
		customer.Website = *input.Website
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.Status != nil {
		if !domain.IsValidCustomerStatus(*input.Status) {
			return nil, apperrors.InvalidInput("unknown customer status: " + *input.Status)
		}
		customer.Status = *input.Status
	}
	if input.DiscountTier != nil {
		tier := pricing.TierLevel(*input.DiscountTier)
		if !tier.IsValid() {
			return nil, apperrors.InvalidInput("unknown discount tier: " + *input.DiscountTier)
		}
		customer.DiscountTier = tier
	}

	customer.UpdatedAt = time.Now().UTC()
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

// LogCommunicationInput holds the fields for a manually logged interaction.
type LogCommunicationInput struct {
	Type     string    `json:"type" validate:"required"`
	Subject  string    `json:"subject,omitempty" validate:"max=300"`
	Content  string    `json:"content,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	LoggedBy string    `json:"-"`
}

// LogCommunication appends a manual entry to a customer's audit trail.
func (s *CustomerService) LogCommunication(ctx context.Context, customerID string, input LogCommunicationInput) (*domain.Communication, error) {
	if !domain.IsValidCommunicationType(input.Type) {
		return nil, apperrors.InvalidInput("unknown communication type: " + input.Type)
	}

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	loggedBy := input.LoggedBy
	if loggedBy == "" {
		loggedBy = workflow.ActorAdmin
	}

	comm := &domain.Communication{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Type:       input.Type,
		Subject:    input.Subject,
		Content:    input.Content,
		Date:       date,
		LoggedBy:   loggedBy,
		CreatedAt:  now,
	}
	if err := s.comms.Create(ctx, comm); err != nil {
		return nil, fmt.Errorf("log communication: %w", err)
	}
	return comm, nil
}

// ListCommunications returns a customer's audit trail, newest first.
func (s *CustomerService) ListCommunications(ctx context.Context, customerID string, page, perPage int) ([]domain.Communication, int, error) {
	return s.comms.ListByCustomer(ctx, customerID, page, perPage)
}

func (s *CustomerService) notifyNewCustomer(ctx context.Context, customer *domain.Customer) {
	intents := []notifier.Intent{
		{
			Channel:   notifier.ChannelEmail,
			Recipient: s.cfg.AdminEmail,
			Subject:   fmt.Sprintf("New Wholesale Customer: %s", customer.BusinessName),
			Body: fmt.Sprintf(
				"A new wholesale account was created.\n\nBusiness: %s\nContact: %s\nEmail: %s",
				customer.BusinessName, customer.ContactName, customer.Email),
		},
		{
			Channel:  notifier.ChannelPush,
			Subject:  fmt.Sprintf("New Customer: %s", customer.BusinessName),
			Body:     fmt.Sprintf("%s (%s) signed up for wholesale", customer.ContactName, customer.Email),
			Priority: notifier.PriorityHigh,
			URL:      s.cfg.BaseURL,
			URLLabel: "View Customer",
		},
	}
	s.dispatcher.Dispatch(ctx, intents)
}
