package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jalai-llc/bundongsan/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO bundongsan.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM bundongsan.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", mapError(err))
	}
	return user, nil
}

// ListUsers returns every registered user
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, email, created_at, updated_at
		FROM bundongsan.users
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetProfile retrieves the user's financial profile
func (r *Repository) GetProfile(ctx context.Context, userID int64) (models.FinancialProfile, error) {
	var p models.FinancialProfile
	query := `
		SELECT gross_annual_income, monthly_debts, monthly_other_expenses, current_rent,
		       savings_available, monthly_savings_rate, effective_tax_rate, comfort_level
		FROM bundongsan.financial_profiles
		WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.GrossAnnualIncome, &p.MonthlyDebts, &p.MonthlyOtherExpenses, &p.CurrentRent,
		&p.SavingsAvailable, &p.MonthlySavingsRate, &p.EffectiveTaxRate, &p.ComfortLevel)
	if err != nil {
		return models.FinancialProfile{}, fmt.Errorf("failed to get profile: %w", mapError(err))
	}
	return p, nil
}

// SaveProfile inserts or replaces the user's financial profile
func (r *Repository) SaveProfile(ctx context.Context, userID int64, p models.FinancialProfile) error {
	query := `
		INSERT INTO bundongsan.financial_profiles (user_id, gross_annual_income, monthly_debts,
			monthly_other_expenses, current_rent, savings_available, monthly_savings_rate,
			effective_tax_rate, comfort_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			gross_annual_income = EXCLUDED.gross_annual_income,
			monthly_debts = EXCLUDED.monthly_debts,
			monthly_other_expenses = EXCLUDED.monthly_other_expenses,
			current_rent = EXCLUDED.current_rent,
			savings_available = EXCLUDED.savings_available,
			monthly_savings_rate = EXCLUDED.monthly_savings_rate,
			effective_tax_rate = EXCLUDED.effective_tax_rate,
			comfort_level = EXCLUDED.comfort_level,
			updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, query, userID, p.GrossAnnualIncome, p.MonthlyDebts,
		p.MonthlyOtherExpenses, p.CurrentRent, p.SavingsAvailable, p.MonthlySavingsRate,
		p.EffectiveTaxRate, string(p.ComfortLevel))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetLoanTerms retrieves the user's loan terms
func (r *Repository) GetLoanTerms(ctx context.Context, userID int64) (models.LoanTerms, error) {
	var t models.LoanTerms
	query := `
		SELECT interest_rate, term_years, down_payment_percent, property_tax_rate,
		       closing_cost_rate, is_high_cost_area
		FROM bundongsan.loan_terms
		WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&t.InterestRate, &t.TermYears, &t.DownPaymentPercent, &t.PropertyTaxRate,
		&t.ClosingCostRate, &t.IsHighCostArea)
	if err != nil {
		return models.LoanTerms{}, fmt.Errorf("failed to get loan terms: %w", mapError(err))
	}
	return t, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveLoanTerms inserts or replaces the user's loan terms
func (r *Repository) SaveLoanTerms(ctx context.Context, userID int64, t models.LoanTerms) error {
	return saveLoanTerms(ctx, r.db, userID, t)
}

func saveLoanTerms(ctx context.Context, ex execer, userID int64, t models.LoanTerms) error {
	query := `
		INSERT INTO bundongsan.loan_terms (user_id, interest_rate, term_years, down_payment_percent,
			property_tax_rate, closing_cost_rate, is_high_cost_area, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			interest_rate = EXCLUDED.interest_rate,
			term_years = EXCLUDED.term_years,
			down_payment_percent = EXCLUDED.down_payment_percent,
			property_tax_rate = EXCLUDED.property_tax_rate,
			closing_cost_rate = EXCLUDED.closing_cost_rate,
			is_high_cost_area = EXCLUDED.is_high_cost_area,
			updated_at = CURRENT_TIMESTAMP`
	_, err := ex.ExecContext(ctx, query, userID, t.InterestRate, t.TermYears,
		t.DownPaymentPercent, t.PropertyTaxRate, t.ClosingCostRate, t.IsHighCostArea)
	if err != nil {
		return fmt.Errorf("failed to save loan terms: %w", err)
	}
	return nil
}

// ListProperties returns the user's collection in its stored order
func (r *Repository) ListProperties(ctx context.Context, userID int64) ([]models.Property, error) {
	query := `
		SELECT data
		FROM bundongsan.properties
		WHERE user_id = $1
		ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		var p models.Property
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return out, nil
}

// ReplaceProperties stores the user's whole collection in one transaction
func (r *Repository) ReplaceProperties(ctx context.Context, userID int64, records []models.Property) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceProperties(ctx, tx, userID, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit properties: %w", err)
	}
	return nil
}

// SaveFinancing stores new loan terms together with the collection restamped
// with them. Either both are written or neither is.
func (r *Repository) SaveFinancing(ctx context.Context, userID int64, t models.LoanTerms, records []models.Property) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveLoanTerms(ctx, tx, userID, t); err != nil {
		return err
	}
	if err := replaceProperties(ctx, tx, userID, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit financing: %w", err)
	}
	return nil
}

func replaceProperties(ctx context.Context, ex execer, userID int64, records []models.Property) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM bundongsan.properties WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear properties: %w", err)
	}

	insert := `
		INSERT INTO bundongsan.properties (id, user_id, position, zipcode, data)
		VALUES ($1, $2, $3, $4, $5)`
	for i, p := range records {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode property %s: %w", p.ID, err)
		}
		if _, err := ex.ExecContext(ctx, insert, p.ID, userID, i, p.Zipcode, data); err != nil {
			return fmt.Errorf("failed to insert property %s: %w", p.ID, mapError(err))
		}
	}
	return nil
}

// SaveMarketRate records an observed market mortgage rate
func (r *Repository) SaveMarketRate(ctx context.Context, rate models.MarketRate) error {
	query := `
		INSERT INTO bundongsan.market_rates (observed_on, rate, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (observed_on) DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source`
	_, err := r.db.ExecContext(ctx, query, rate.ObservedOn, rate.Rate, rate.Source)
	if err != nil {
		return fmt.Errorf("failed to save market rate: %w", err)
	}
	return nil
}

// LatestMarketRate returns the most recent observed market rate
func (r *Repository) LatestMarketRate(ctx context.Context) (models.MarketRate, error) {
	var rate models.MarketRate
	var observed time.Time
	query := `
		SELECT observed_on, rate, source
		FROM bundongsan.market_rates
		ORDER BY observed_on DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&observed, &rate.Rate, &rate.Source)
	if err != nil {
		return models.MarketRate{}, fmt.Errorf("failed to get market rate: %w", mapError(err))
	}
	rate.ObservedOn = observed
	return rate, nil
}
