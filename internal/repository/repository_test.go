package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalai-llc/bundongsan/internal/models"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestUsers(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Create user", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO bundongsan.users").
			WithArgs("kim", "kim@example.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, created, created))

		user := &models.User{Username: "kim", Email: "kim@example.com", PasswordHash: "hash"}
		require.NoError(t, repo.CreateUser(ctx, user))
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, created, user.CreatedAt)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO bundongsan.users").
			WithArgs("kim", "kim@example.com", "hash").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.CreateUser(ctx, &models.User{Username: "kim", Email: "kim@example.com", PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("Find user by email", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundongsan.users WHERE email = (.+)").
			WithArgs("kim@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
				AddRow(7, "kim", "kim@example.com", "hash", created, created))

		user, err := repo.FindUserByEmail(ctx, "kim@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundongsan.users WHERE email = (.+)").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List users", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundongsan.users ORDER BY id").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at", "updated_at"}).
				AddRow(1, "a", "a@example.com", created, created).
				AddRow(2, "b", "b@example.com", created, created))

		users, err := repo.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileAndTerms(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	t.Run("Missing profile", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundongsan.financial_profiles").
			WithArgs(int64(3)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetProfile(ctx, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Save and load profile", func(t *testing.T) {
		p := models.FinancialProfile{GrossAnnualIncome: 120000, SavingsAvailable: 100000, ComfortLevel: models.ComfortAggressive}
		mock.ExpectExec("INSERT INTO bundongsan.financial_profiles").
			WithArgs(int64(3), 120000.0, 0.0, 0.0, 0.0, 100000.0, 0.0, 0.0, "aggressive").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SaveProfile(ctx, 3, p))

		mock.ExpectQuery("SELECT (.+) FROM bundongsan.financial_profiles").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"gross_annual_income", "monthly_debts", "monthly_other_expenses",
				"current_rent", "savings_available", "monthly_savings_rate", "effective_tax_rate", "comfort_level"}).
				AddRow(120000.0, 0.0, 0.0, 0.0, 100000.0, 0.0, 0.0, "aggressive"))
		got, err := repo.GetProfile(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("Save and load loan terms", func(t *testing.T) {
		terms := models.DefaultLoanTerms()
		mock.ExpectExec("INSERT INTO bundongsan.loan_terms").
			WithArgs(int64(3), 0.0675, 30, 20.0, 0.0125, 0.03, true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SaveLoanTerms(ctx, 3, terms))

		mock.ExpectQuery("SELECT (.+) FROM bundongsan.loan_terms").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"interest_rate", "term_years", "down_payment_percent",
				"property_tax_rate", "closing_cost_rate", "is_high_cost_area"}).
				AddRow(0.0675, 30, 20.0, 0.0125, 0.03, true))
		got, err := repo.GetLoanTerms(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, terms, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProperties(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	records := []models.Property{
		{ID: "a", Zipcode: "90012", City: "Los Angeles", MedianPrice: 824000},
		{ID: "b", Name: "Hillside", City: "Los Angeles", MedianPrice: 650000},
	}

	t.Run("Replace in a transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bundongsan.properties").WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 5))
		mock.ExpectExec("INSERT INTO bundongsan.properties").
			WithArgs("a", int64(3), 0, "90012", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO bundongsan.properties").
			WithArgs("b", int64(3), 1, "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceProperties(ctx, 3, records))
	})

	t.Run("Failed insert rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bundongsan.properties").WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO bundongsan.properties").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ReplaceProperties(ctx, 3, records)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("Financing saves terms and records together", func(t *testing.T) {
		terms := models.DefaultLoanTerms()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO bundongsan.loan_terms").
			WithArgs(int64(3), terms.InterestRate, terms.TermYears, terms.DownPaymentPercent,
				terms.PropertyTaxRate, terms.ClosingCostRate, terms.IsHighCostArea).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM bundongsan.properties").WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO bundongsan.properties").
			WithArgs("a", int64(3), 0, "90012", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO bundongsan.properties").
			WithArgs("b", int64(3), 1, "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveFinancing(ctx, 3, terms, records))
	})

	t.Run("Financing rolls back terms when records fail", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO bundongsan.loan_terms").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM bundongsan.properties").WithArgs(int64(3)).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.SaveFinancing(ctx, 3, models.DefaultLoanTerms(), records)
		assert.ErrorContains(t, err, "failed to clear properties")
	})

	t.Run("List decodes stored records", func(t *testing.T) {
		mock.ExpectQuery("SELECT data FROM bundongsan.properties").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"data"}).
				AddRow([]byte(`{"id":"a","zipcode":"90012","name":"","city":"Los Angeles","median_price":824000}`)).
				AddRow([]byte(`{"id":"b","name":"Hillside","city":"Los Angeles","median_price":650000}`)))

		got, err := repo.ListProperties(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketRates(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO bundongsan.market_rates").
		WithArgs(day, 0.0631, "feed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveMarketRate(ctx, models.MarketRate{ObservedOn: day, Rate: 0.0631, Source: "feed"}))

	mock.ExpectQuery("SELECT (.+) FROM bundongsan.market_rates").
		WillReturnRows(sqlmock.NewRows([]string{"observed_on", "rate", "source"}).AddRow(day, 0.0631, "feed"))
	rate, err := repo.LatestMarketRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0631, rate.Rate)
	assert.True(t, rate.ObservedOn.Equal(day))

	mock.ExpectQuery("SELECT (.+) FROM bundongsan.market_rates").WillReturnError(sql.ErrNoRows)
	_, err = repo.LatestMarketRate(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
