// Package service implements the business logic of the wholesale platform.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/event"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/workflow"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// invoiceTermsNet30 is the only invoice term currently offered.
const invoiceTermsNet30 = "net30"

// CheckoutConfig holds the deployment-specific checkout settings.
type CheckoutConfig struct {
	// BaseURL of the storefront, used for redirect and dashboard links.
	BaseURL string
	// AdminEmail receives the new-order notification.
	AdminEmail string
}

// CheckoutService places wholesale orders: it resolves authoritative prices,
// applies the customer's discount tier, allocates the order number, and
// persists the whole aggregate in one transaction. Notifications and events
// are dispatched only after commit and never fail the checkout.
type CheckoutService struct {
	cfg        CheckoutConfig
	orders     repository.OrderRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	sequences  repository.SequenceRepository
	tiers      pricing.TierTable
	payments   provider.PaymentProvider
	dispatcher *notifier.Dispatcher
	producer   *event.Producer
	logger     *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cfg CheckoutConfig,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sequences repository.SequenceRepository,
	payments provider.PaymentProvider,
	dispatcher *notifier.Dispatcher,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		cfg:        cfg,
		orders:     orders,
		products:   products,
		customers:  customers,
		sequences:  sequences,
		tiers:      pricing.DefaultTierTable(),
		payments:   payments,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// CheckoutItemInput is one cart line. Only the product reference and quantity
// are trusted; prices always come from the catalog.
type CheckoutItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput holds the parameters for placing an order.
type CheckoutInput struct {
	CustomerID      string              `json:"-"`
	Items           []CheckoutItemInput `json:"items"`
	CartReference   string              `json:"cart_reference,omitempty"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
}

// CheckoutResult is the outcome of a checkout.
type CheckoutResult struct {
	Order         *domain.Order `json:"order"`
	CheckoutURL   string        `json:"checkout_url,omitempty"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
}

// PayNow places a card order: the order is created pending payment together
// with a hosted payment link the buyer is redirected to. The order is
// committed before the provider call; a provider failure leaves it
// pending_payment so a retried checkout attaches the link.
func (s *CheckoutService) PayNow(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	customer, order, err := s.buildOrder(ctx, input, domain.PaymentMethodCard)
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		// Idempotent replay: buildOrder resolved an existing order.
		return s.replayResult(ctx, customer, input.CartReference)
	}

	if err := s.persistOrder(ctx, order, nil, nil); err != nil {
		if replay, rerr := s.replayOnConflict(ctx, customer, input.CartReference, err); rerr == nil {
			return replay, nil
		}
		return nil, err
	}

	s.afterCheckout(ctx, customer, order, nil)

	if err := s.attachPaymentLink(ctx, customer, order); err != nil {
		return nil, err
	}

	return &CheckoutResult{Order: order, CheckoutURL: order.CheckoutURL}, nil
}

// attachPaymentLink creates the hosted payment link for a persisted card order
// and stores the session reference on it.
func (s *CheckoutService) attachPaymentLink(ctx context.Context, customer *domain.Customer, order *domain.Order) error {
	link, err := s.payments.CreateCheckoutLink(ctx, provider.CheckoutLinkParams{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Total:         order.Total,
		CustomerEmail: customer.Email,
		LineItems:     checkoutLineItems(ctx, s.products, order.Items),
		RedirectURL:   fmt.Sprintf("%s/account/checkout/thank-you?order=%s", s.cfg.BaseURL, order.OrderNumber),
	})
	if err != nil {
		return fmt.Errorf("create checkout link: %w", err)
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, link.PaymentLinkID, link.URL); err != nil {
		return fmt.Errorf("attach payment session: %w", err)
	}
	order.SessionReference = link.PaymentLinkID
	order.CheckoutURL = link.URL
	return nil
}

// RequestInvoice places a net-30 invoice order: the order, its draft invoice,
// and the audit log entry are created in one transaction.
func (s *CheckoutService) RequestInvoice(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	customer, order, err := s.buildOrder(ctx, input, domain.PaymentMethodInvoice)
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		return s.replayResult(ctx, customer, input.CartReference)
	}

	order.InvoiceTerms = invoiceTermsNet30

	now := order.CreatedAt
	year := now.Year()
	invSeq, err := s.sequences.Next(ctx, repository.SequenceScopeInvoice, year)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	inv := &domain.Invoice{
		ID:            uuid.New().String(),
		OrderID:       order.ID,
		CustomerID:    customer.ID,
		InvoiceNumber: fmt.Sprintf("BDI-%d-%03d", year, invSeq),
		Amount:        order.Total,
		DueDate:       now.AddDate(0, 0, 30),
		Status:        domain.InvoiceStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	comm := &domain.Communication{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Type:       domain.CommunicationTypeOrderPlaced,
		Subject:    fmt.Sprintf("Order %s placed (invoice)", order.OrderNumber),
		Content: fmt.Sprintf("Order placed with invoice payment. Invoice: %s. Total: $%s",
			inv.InvoiceNumber, workflow.FormatCents(order.Total)),
		Date:      now,
		LoggedBy:  workflow.ActorSystem,
		CreatedAt: now,
	}

	if err := s.persistOrder(ctx, order, inv, comm); err != nil {
		if replay, rerr := s.replayOnConflict(ctx, customer, input.CartReference, err); rerr == nil {
			return replay, nil
		}
		return nil, err
	}

	s.afterCheckout(ctx, customer, order, inv)

	return &CheckoutResult{Order: order, InvoiceNumber: inv.InvoiceNumber}, nil
}

// buildOrder validates the cart, resolves prices, computes the discount, and
// allocates the order number. When the cart reference already has an order, it
// returns an empty order marker so the caller replays the stored result.
func (s *CheckoutService) buildOrder(ctx context.Context, input CheckoutInput, paymentMethod string) (*domain.Customer, *domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, nil, apperrors.EmptyCart()
	}

	customer, err := s.customers.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load customer: %w", err)
	}

	if input.CartReference != "" {
		if existing, err := s.orders.GetByCartReference(ctx, input.CartReference); err == nil && existing != nil {
			if existing.CustomerID != customer.ID {
				return nil, nil, apperrors.Conflict(fmt.Sprintf("cart reference %s belongs to another customer", input.CartReference))
			}
			s.logger.InfoContext(ctx, "checkout replayed for cart reference",
				slog.String("cart_reference", input.CartReference),
				slog.String("order_number", existing.OrderNumber),
			)
			return customer, &domain.Order{}, nil
		}
	}

	productIDs := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, nil, apperrors.InvalidInput("item quantity must be positive")
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	var subtotal int64
	items := make([]domain.OrderItem, len(input.Items))
	for i, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, apperrors.NotFound("product", item.ProductID)
		}
		if !product.IsActive {
			return nil, nil, apperrors.InvalidInput(fmt.Sprintf("product %s is no longer available", product.SKU))
		}
		lineTotal := product.RetailPrice * int64(item.Quantity)
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.RetailPrice,
			LineTotal: lineTotal,
		}
		subtotal += lineTotal
	}

	tier := customer.DiscountTier
	if tier == "" {
		tier = pricing.TierAuto
	}
	discount, err := s.tiers.ComputeDiscount(subtotal, tier)
	if err != nil {
		return nil, nil, fmt.Errorf("compute discount: %w", err)
	}
	if tier != pricing.TierAuto {
		if auto, aerr := s.tiers.ComputeDiscount(subtotal, pricing.TierAuto); aerr == nil && discount.Percent > auto.Percent {
			s.logger.WarnContext(ctx, "pinned tier exceeds volume tier",
				slog.String("customer_id", customer.ID),
				slog.String("tier", string(tier)),
				slog.Int("pinned_percent", discount.Percent),
				slog.Int("auto_percent", auto.Percent),
			)
		}
	}

	year := now.Year()
	seq, err := s.sequences.Next(ctx, repository.SequenceScopeOrder, year)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate order number: %w", err)
	}

	order := &domain.Order{
		ID:              orderID,
		OrderNumber:     fmt.Sprintf("BD-%d-%03d", year, seq),
		CustomerID:      customer.ID,
		Status:          domain.OrderStatusPendingPayment,
		PaymentMethod:   paymentMethod,
		Subtotal:        subtotal,
		DiscountPercent: discount.Percent,
		DiscountAmount:  discount.Amount,
		Total:           discount.Total,
		CartReference:   input.CartReference,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return customer, order, nil
}

func (s *CheckoutService) persistOrder(ctx context.Context, order *domain.Order, inv *domain.Invoice, comm *domain.Communication) error {
	if err := s.orders.Create(ctx, order, inv, comm); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// replayOnConflict resolves the lost side of a duplicate-submission race: the
// unique index on cart_reference rejected our insert, so the winning order is
// returned instead.
func (s *CheckoutService) replayOnConflict(ctx context.Context, customer *domain.Customer, cartRef string, cause error) (*CheckoutResult, error) {
	if cartRef == "" || !errors.Is(cause, apperrors.ErrConflict) {
		return nil, cause
	}
	return s.replayResult(ctx, customer, cartRef)
}

func (s *CheckoutService) replayResult(ctx context.Context, customer *domain.Customer, cartRef string) (*CheckoutResult, error) {
	existing, err := s.orders.GetByCartReference(ctx, cartRef)
	if err != nil {
		return nil, fmt.Errorf("load order for cart reference: %w", err)
	}
	if customer != nil && existing.CustomerID != customer.ID {
		return nil, apperrors.Conflict(fmt.Sprintf("cart reference %s belongs to another customer", cartRef))
	}

	// An earlier attempt may have committed the order but failed to attach the
	// payment link; attach it now so the replay still returns a checkout URL.
	if customer != nil && existing.PaymentMethod == domain.PaymentMethodCard &&
		existing.Status == domain.OrderStatusPendingPayment &&
		existing.CheckoutURL == "" {
		if err := s.attachPaymentLink(ctx, customer, existing); err != nil {
			return nil, err
		}
	}

	res := &CheckoutResult{Order: existing, CheckoutURL: existing.CheckoutURL}
	return res, nil
}

// afterCheckout runs the post-commit side effects: owner and customer
// notifications plus domain events. Failures are logged and swallowed.
func (s *CheckoutService) afterCheckout(ctx context.Context, customer *domain.Customer, order *domain.Order, inv *domain.Invoice) {
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
	}
	total := workflow.FormatCents(order.Total)

	intents := []notifier.Intent{
		{
			Channel:   notifier.ChannelEmail,
			Recipient: s.cfg.AdminEmail,
			Subject:   fmt.Sprintf("New Order %s from %s", order.OrderNumber, customer.BusinessName),
			Body: fmt.Sprintf(
				"New wholesale order!\n\nOrder: %s\nCustomer: %s\nItems: %d\nTotal: $%s\nPayment: %s\n\nView: %s",
				order.OrderNumber, customer.BusinessName, itemCount, total, order.PaymentMethod, s.cfg.BaseURL),
		},
		{
			Channel:   notifier.ChannelEmail,
			Recipient: customer.Email,
			Subject:   fmt.Sprintf("Order Confirmation - %s", order.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nThank you for your order! Your order %s has been received.\n\nItems: %d\nTotal: $%s\n\nWe'll send you updates as your order is processed.\n\nThank you,\nBanwell Designs",
				customer.ContactName, order.OrderNumber, itemCount, total),
		},
		{
			Channel:  notifier.ChannelPush,
			Subject:  fmt.Sprintf("Order %s", order.OrderNumber),
			Body:     fmt.Sprintf("%s - %d items - $%s", customer.BusinessName, itemCount, total),
			Priority: notifier.PriorityHigh,
			URL:      s.cfg.BaseURL,
			URLLabel: "View Order",
		},
	}
	s.dispatcher.Dispatch(ctx, intents)

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	if inv != nil {
		if err := s.producer.PublishInvoiceCreated(ctx, inv); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish invoice.created event",
				slog.String("invoice_id", inv.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// checkoutLineItems maps order items to provider line items with display
// names. Name resolution is best-effort; the provider only needs them for the
// hosted page.
func checkoutLineItems(ctx context.Context, products repository.ProductRepository, items []domain.OrderItem) []provider.LineItem {
	out := make([]provider.LineItem, len(items))
	for i, item := range items {
		name := item.ProductID
		if p, err := products.GetByID(ctx, item.ProductID); err == nil {
			name = p.DisplayName()
		}
		out[i] = provider.LineItem{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}
