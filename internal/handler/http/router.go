package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/service"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/health"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/middleware"
)

// Roles accepted by the admin API. The cron role may only run sweeps.
const (
	RoleAdmin = "admin"
	RoleCron  = "cron"
	RoleShop  = "shop"
)

// RouterConfig holds everything the router needs beyond the services.
type RouterConfig struct {
	// APIKeys pairs accepted X-API-Key values with the role they grant.
	APIKeys map[string]string
	// WebhookSignatureKey verifies provider webhook signatures.
	WebhookSignatureKey string
	// WebhookNotificationURL is the exact URL registered with the provider.
	WebhookNotificationURL string
	PprofCIDRs             []string
	// CORSAllowedOrigins lists the browser origins the admin and shop UIs
	// are served from. "*" is only honored in development.
	CORSAllowedOrigins []string
	Environment        string
}

// Services bundles the service layer for route registration.
type Services struct {
	Checkout  *service.CheckoutService
	Orders    *service.OrderService
	Customers *service.CustomerService
	Products  *service.ProductService
	Invoices  *service.InvoiceService
	Reconcile *service.ReconciliationService
	Reports   *service.ReportService
	Curation  *service.CurationService
}

// NewRouter creates a chi router with all wholesale platform routes registered.
func NewRouter(
	svcs Services,
	cfg RouterConfig,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ExposedHeaders: []string{"X-Correlation-ID"},
		Environment:    cfg.Environment,
	}))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wholesale"))
	r.Use(middleware.Tracing("wholesale"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	checkoutHandler := NewCheckoutHandler(svcs.Checkout, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	customerHandler := NewCustomerHandler(svcs.Customers, logger)
	productHandler := NewProductHandler(svcs.Products, logger)
	invoiceHandler := NewInvoiceHandler(svcs.Invoices, logger)
	webhookHandler := NewWebhookHandler(svcs.Reconcile, cfg.WebhookSignatureKey, cfg.WebhookNotificationURL, logger)
	reportHandler := NewReportHandler(svcs.Reports, logger)
	curationHandler := NewCurationHandler(svcs.Curation, logger)

	// Webhooks authenticate by signature, not API key.
	r.Post("/api/v1/webhooks/square", webhookHandler.HandleSquare)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKeys))
		r.Use(ContentTypeJSON)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.RequireRole(RoleShop, RoleAdmin))

			r.Post("/pay-now", checkoutHandler.PayNow)
			r.Post("/request-invoice", checkoutHandler.RequestInvoice)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(RoleAdmin, RoleCron))

			r.Get("/", orderHandler.ListOrders)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Get("/{id}/invoice", invoiceHandler.GetInvoiceByOrder)
			r.With(middleware.RequireRole(RoleAdmin)).Put("/{id}/workflow", orderHandler.Transition)
			r.With(middleware.RequireRole(RoleAdmin)).Patch("/{id}", orderHandler.CorrectOrder)
			r.Post("/followups/run", orderHandler.RunFollowUps)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.RequireRole(RoleAdmin))

			r.Post("/", customerHandler.CreateCustomer)
			r.Get("/", customerHandler.ListCustomers)
			r.Get("/{id}", customerHandler.GetCustomer)
			r.Patch("/{id}", customerHandler.UpdateCustomer)
			r.Post("/{id}/communications", customerHandler.LogCommunication)
			r.Get("/{id}/communications", customerHandler.ListCommunications)
			r.Get("/{id}/curated", curationHandler.ListCurated)
			r.Post("/{id}/curated", curationHandler.AddCurated)
			r.Delete("/{id}/curated/{productID}", curationHandler.RemoveCurated)
		})

		// Catalog reads are safe to cache briefly at the edge.
		catalogCache := middleware.CacheControl(300)

		r.Route("/categories", func(r chi.Router) {
			r.With(catalogCache).Get("/", productHandler.ListCategories)

			r.With(middleware.RequireRole(RoleAdmin)).Post("/", productHandler.CreateCategory)
			r.With(middleware.RequireRole(RoleAdmin)).Patch("/{id}", productHandler.UpdateCategory)
			r.With(middleware.RequireRole(RoleAdmin)).Delete("/{id}", productHandler.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.With(catalogCache).Get("/", productHandler.ListProducts)
			r.With(catalogCache).Get("/{id}", productHandler.GetProduct)

			r.With(middleware.RequireRole(RoleAdmin)).Post("/", productHandler.CreateProduct)
			r.With(middleware.RequireRole(RoleAdmin)).Patch("/{id}", productHandler.UpdateProduct)
			r.With(middleware.RequireRole(RoleAdmin)).Delete("/{id}", productHandler.DeleteProduct)
			r.With(middleware.RequireRole(RoleAdmin)).Post("/import", productHandler.ImportProducts)
		})

		r.With(middleware.RequireRole(RoleAdmin)).Get("/reports", reportHandler.GetSalesReport)
		r.With(middleware.RequireRole(RoleAdmin)).Get("/dashboard", reportHandler.GetDashboard)

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.RequireRole(RoleAdmin))

			r.Get("/", invoiceHandler.ListInvoices)
			r.Get("/{id}", invoiceHandler.GetInvoice)
			r.Put("/{id}/status", invoiceHandler.UpdateInvoiceStatus)
		})
	})

	return r
}
