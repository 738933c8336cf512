package session

import (
	"context"
	"sync"
	"time"

	"ayurbook/database/repository/localstore"
	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

type SessionService interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error

	// Profile
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)

	// Selectors
	Token() string
	Current() (models.Session, bool)
	IsAuthenticated() bool
	IsAdmin() bool
	ProfileComplete() bool
	Role() models.Role

	// Display currency
	Currency() models.Currency
	SetCurrency(ctx context.Context, cur models.Currency) error

	// Called by the gateway on a 401.
	HandleUnauthorized()
}

// Store owns the authenticated identity. It is the only writer of the
// credential; the gateway reads it through Token on every request.
type Store struct {
	Client *gateway.Client
	Local  localstore.Store
	Events *utils.Events
	Logger *zap.Logger
	Now    func() time.Time

	mu       sync.RWMutex
	session  *models.Session
	currency models.Currency
}

var _ SessionService = (*Store)(nil)

// NewStore returns a signed-out store using defaultCurrency until a
// preference is set or restored.
func NewStore(client *gateway.Client, local localstore.Store, events *utils.Events, logger *zap.Logger, defaultCurrency models.Currency) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultCurrency.Supported() {
		defaultCurrency = models.CurrencyINR
	}
	return &Store{
		Client:   client,
		Local:    local,
		Events:   events,
		Logger:   logger,
		Now:      time.Now,
		currency: defaultCurrency,
	}
}
