package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jalai-llc/bundongsan/internal/analytics"
	"github.com/jalai-llc/bundongsan/internal/cache"
	"github.com/jalai-llc/bundongsan/internal/config"
	"github.com/jalai-llc/bundongsan/internal/finance"
	"github.com/jalai-llc/bundongsan/internal/geo"
	"github.com/jalai-llc/bundongsan/internal/middleware"
	"github.com/jalai-llc/bundongsan/internal/models"
	"github.com/jalai-llc/bundongsan/internal/monitoring"
	"github.com/jalai-llc/bundongsan/internal/repository"
	"github.com/jalai-llc/bundongsan/internal/utils/email"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

const minPasswordLength = 8

// Store is the persistence the service needs.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetProfile(ctx context.Context, userID int64) (models.FinancialProfile, error)
	SaveProfile(ctx context.Context, userID int64, p models.FinancialProfile) error
	GetLoanTerms(ctx context.Context, userID int64) (models.LoanTerms, error)
	ListProperties(ctx context.Context, userID int64) ([]models.Property, error)
	ReplaceProperties(ctx context.Context, userID int64, records []models.Property) error
	SaveFinancing(ctx context.Context, userID int64, t models.LoanTerms, records []models.Property) error
	SaveMarketRate(ctx context.Context, rate models.MarketRate) error
	LatestMarketRate(ctx context.Context) (models.MarketRate, error)
}

// Mailer sends user notifications.
type Mailer interface {
	SendWelcome(to, username string) error
	SendDigest(to, username string, d email.Digest) error
}

// RateSource provides the current market mortgage rate.
type RateSource interface {
	LatestRate(ctx context.Context) (models.MarketRate, error)
}

// Service handles business logic
type Service struct {
	repo    Store
	log     *logrus.Logger
	config  *config.Config
	solver  *finance.Solver
	ranker  *analytics.CachedRanker
	metrics *monitoring.Metrics

	viewCache analytics.ViewCache
	geoIndex  *geo.Index
	seed      []models.Property
	mailer    Mailer
	rates     RateSource

	mu         sync.Mutex
	workspaces map[int64]*Workspace
}

// Option configures optional collaborators.
type Option func(*Service)

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithViewCache(c analytics.ViewCache) Option {
	return func(s *Service) { s.viewCache = c }
}

func WithGeoIndex(idx *geo.Index) Option {
	return func(s *Service) { s.geoIndex = idx }
}

func WithSeedCatalog(seed []models.Property) Option {
	return func(s *Service) { s.seed = seed }
}

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithRateSource(r RateSource) Option {
	return func(s *Service) { s.rates = r }
}

// NewService initializes a new service
func NewService(repo Store, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		log:        log,
		config:     cfg,
		workspaces: make(map[int64]*Workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.viewCache == nil {
		s.viewCache = cache.NewMemoryViewCache(256, cfg.CacheTTL)
	}
	s.solver = finance.NewSolver(cfg.Assumptions)
	s.ranker = analytics.NewCachedRanker(
		analytics.NewRanker(cfg.Assumptions, s.geoIndex, log, s.metrics), s.viewCache)
	return s
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, emailAddr, password string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.Username); err != nil {
			s.log.WithError(err).Warn("Failed to send welcome email")
		}
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return "", err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	// Generate JWT
	ttl := s.config.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// userID reads the authenticated user from the context
func userID(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value(middleware.UserIDKey).(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("%w: user ID not found in context", ErrUnauthorized)
	}

	id, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user ID", ErrUnauthorized)
	}
	return id, nil
}
