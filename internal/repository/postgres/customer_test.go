package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

func sampleCustomer() *domain.Customer {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Customer{
		ID:           "cust-001",
		Email:        "buyer@acmepottery.com",
		BusinessName: "Acme Pottery",
		ContactName:  "Jo",
		Status:       domain.CustomerStatusActive,
		DiscountTier: pricing.TierAuto,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCustomerRepository_Create_DuplicateEmail(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCustomerRepository(mock)

	c := sampleCustomer()

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(
			c.ID, c.Email, c.BusinessName, c.ContactName, c.Phone,
			c.Address, c.City, c.State, c.Zip, c.Website, c.Notes,
			c.Status, c.DiscountTier, c.ProviderCustomerID,
			c.CreatedAt, c.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err = repo.Create(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByID(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCustomerRepository(mock)

	c := sampleCustomer()

	rows := pgxmock.NewRows([]string{
		"id", "email", "business_name", "contact_name", "phone", "address",
		"city", "state", "zip", "website", "notes", "status", "discount_tier",
		"provider_customer_id", "created_at", "updated_at",
	}).AddRow(
		c.ID, c.Email, c.BusinessName, c.ContactName, c.Phone, c.Address,
		c.City, c.State, c.Zip, c.Website, c.Notes, c.Status, c.DiscountTier,
		c.ProviderCustomerID, c.CreatedAt, c.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
		WithArgs(c.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Pottery", got.BusinessName)
	assert.Equal(t, pricing.TierAuto, got.DiscountTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByID_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCustomerRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
