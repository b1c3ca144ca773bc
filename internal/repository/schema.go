package repository

const schema = `
CREATE SCHEMA IF NOT EXISTS bundongsan;

CREATE TABLE IF NOT EXISTS bundongsan.users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bundongsan.financial_profiles (
	user_id                BIGINT PRIMARY KEY REFERENCES bundongsan.users(id) ON DELETE CASCADE,
	gross_annual_income    DOUBLE PRECISION NOT NULL DEFAULT 0,
	monthly_debts          DOUBLE PRECISION NOT NULL DEFAULT 0,
	monthly_other_expenses DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_rent           DOUBLE PRECISION NOT NULL DEFAULT 0,
	savings_available      DOUBLE PRECISION NOT NULL DEFAULT 0,
	monthly_savings_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
	effective_tax_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
	comfort_level          TEXT NOT NULL DEFAULT 'standard',
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bundongsan.loan_terms (
	user_id              BIGINT PRIMARY KEY REFERENCES bundongsan.users(id) ON DELETE CASCADE,
	interest_rate        DOUBLE PRECISION NOT NULL,
	term_years           INTEGER NOT NULL,
	down_payment_percent DOUBLE PRECISION NOT NULL,
	property_tax_rate    DOUBLE PRECISION NOT NULL,
	closing_cost_rate    DOUBLE PRECISION NOT NULL,
	is_high_cost_area    BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bundongsan.properties (
	id       TEXT NOT NULL,
	user_id  BIGINT NOT NULL REFERENCES bundongsan.users(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	zipcode  TEXT NOT NULL DEFAULT '',
	data     JSONB NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS bundongsan.market_rates (
	observed_on DATE PRIMARY KEY,
	rate        DOUBLE PRECISION NOT NULL,
	source      TEXT NOT NULL
);
`
