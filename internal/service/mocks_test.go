package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/event"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	pkgkafka "github.com/erinb-maker-radio/banwell-wholesale/pkg/kafka"
)

// --- Mock Repositories ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order, inv *domain.Invoice, comm *domain.Communication) error {
	args := m.Called(ctx, order, inv, comm)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByCartReference(ctx context.Context, ref string) (*domain.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListBySessionReference(ctx context.Context, ref string) ([]domain.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateWithLog(ctx context.Context, order *domain.Order, comm *domain.Communication) error {
	args := m.Called(ctx, order, comm)
	return args.Error(0)
}

func (m *mockOrderRepository) SetPaymentSession(ctx context.Context, orderID, sessionRef, checkoutURL string) error {
	args := m.Called(ctx, orderID, sessionRef, checkoutURL)
	return args.Error(0)
}

func (m *mockOrderRepository) ListFollowUpDue(ctx context.Context, asOf time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockInvoiceRepository struct {
	mock.Mock
}

func (m *mockInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *mockInvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

type mockCommunicationRepository struct {
	mock.Mock
}

func (m *mockCommunicationRepository) Create(ctx context.Context, comm *domain.Communication) error {
	args := m.Called(ctx, comm)
	return args.Error(0)
}

func (m *mockCommunicationRepository) ListByCustomer(ctx context.Context, customerID string, page, perPage int) ([]domain.Communication, int, error) {
	args := m.Called(ctx, customerID, page, perPage)
	return args.Get(0).([]domain.Communication), args.Int(1), args.Error(2)
}

type mockSequenceRepository struct {
	mock.Mock
}

func (m *mockSequenceRepository) Next(ctx context.Context, scope string, year int) (int, error) {
	args := m.Called(ctx, scope, year)
	return args.Int(0), args.Error(1)
}

type mockCuratedRepository struct {
	mock.Mock
}

func (m *mockCuratedRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CuratedProduct, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CuratedProduct), args.Error(1)
}

func (m *mockCuratedRepository) Add(ctx context.Context, entries []domain.CuratedProduct) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *mockCuratedRepository) Remove(ctx context.Context, customerID, productID string) error {
	args := m.Called(ctx, customerID, productID)
	return args.Error(0)
}

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) RevenueByMonth(ctx context.Context) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

func (m *mockReportRepository) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerSpend, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerSpend), args.Error(1)
}

func (m *mockReportRepository) PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductSales), args.Error(1)
}

func (m *mockReportRepository) TierDistribution(ctx context.Context) ([]domain.TierSlice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TierSlice), args.Error(1)
}

func (m *mockReportRepository) SalesTotals(ctx context.Context, since time.Time) (domain.SalesTotals, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(domain.SalesTotals), args.Error(1)
}

func (m *mockReportRepository) OrderStatusCounts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockReportRepository) ActiveCustomerCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Dedup store ---

type mapDedupStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMapDedupStore() *mapDedupStore {
	return &mapDedupStore{seen: make(map[string]bool)}
}

func (s *mapDedupStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *mapDedupStore) Clear(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
	return nil
}

// --- Notification capture ---

type capturingSender struct {
	mu      sync.Mutex
	channel string
	sent    []notifier.Intent
}

func (s *capturingSender) Name() string { return "capture-" + s.channel }

func (s *capturingSender) Send(_ context.Context, intent *notifier.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, *intent)
	return nil
}

func (s *capturingSender) intents() []notifier.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifier.Intent(nil), s.sent...)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestDispatcher returns a dispatcher backed by capturing senders for both
// channels.
func newTestDispatcher() (*notifier.Dispatcher, *capturingSender, *capturingSender) {
	email := &capturingSender{channel: notifier.ChannelEmail}
	push := &capturingSender{channel: notifier.ChannelPush}
	d := notifier.NewDispatcher(newTestLogger(), map[string]notifier.Sender{
		notifier.ChannelEmail: email,
		notifier.ChannelPush:  push,
	})
	return d, email, push
}

// newTestProducer returns an event producer whose publishes fail silently
// against a broker that does not exist.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func strPtr(s string) *string {
	return &s
}
