package app

import (
	"context"

	"ayurbook/config"
	"ayurbook/database"
	"ayurbook/database/repository"
	"ayurbook/models"
	"ayurbook/services/admin"
	"ayurbook/services/booking"
	"ayurbook/services/catalog"
	"ayurbook/services/content"
	"ayurbook/services/gateway"
	"ayurbook/services/session"
	"ayurbook/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds every store of the storefront, wired to one gateway client.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Events *utils.Events
	Local  repository.LocalStore
	Views  *Navigator

	Client     *gateway.Client
	Session    *session.Store
	Treatments *catalog.TreatmentStore
	Packages   *catalog.PackageStore
	Content    *content.Store
	Booking    *booking.Workflow
	Admin      *admin.Engine
}

// Init loads the configuration and opens the configured local store.
func Init() (*App, error) {
	config.LoadConfig()
	logger := utils.GetLogger()

	local, err := database.OpenLocalStore(logger)
	if err != nil {
		return nil, err
	}
	return New(config.AppConfig, local, logger), nil
}

// New wires the stores for cfg. A nil local store falls back to memory.
func New(cfg config.Config, local repository.LocalStore, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if local == nil {
		local = repository.NewMemoryStore()
	}
	events := utils.NewEvents(logger)
	views := NewNavigator("home")

	client := gateway.NewClient(cfg.APIBaseURL, cfg.APITimeout, cfg.MaxRequestsPerMin, logger)
	client.Navigator = views
	client.AuthView = cfg.AuthView
	client.Events = events

	defaultCur, err := models.ParseCurrency(cfg.DefaultCurrency)
	if err != nil {
		logger.Sugar().Warnf("app: %v, falling back to %s", err, models.CurrencyINR)
		defaultCur = models.CurrencyINR
	}

	sess := session.NewStore(client, local, events, logger, defaultCur)
	// The session store is the only credential source; the gateway reads
	// the token from it on every call.
	client.Credentials = sess
	client.OnUnauthorized = sess

	treatments := catalog.NewTreatmentStore(client, cfg.ItemsPerPage, cfg.DetailCacheTTL, events, logger)
	packages := catalog.NewPackageStore(client, cfg.ItemsPerPage, cfg.DetailCacheTTL, events, logger)

	workflow := booking.NewWorkflow(booking.Options{
		Client:          client,
		Treatments:      treatments,
		Packages:        packages,
		Authorizer:      sess,
		Rates:           rates(cfg),
		DefaultCurrency: defaultCur,
		AutoConfirm:     cfg.AutoConfirmBookings,
		Events:          events,
		Logger:          logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Events:     events,
		Local:      local,
		Views:      views,
		Client:     client,
		Session:    sess,
		Treatments: treatments,
		Packages:   packages,
		Content:    content.NewStore(client, cfg.ItemsPerPage, events, logger),
		Booking:    workflow,
		Admin:      admin.NewEngine(client, cfg.ItemsPerPage, sess, rates(cfg), events, logger),
	}
}

func rates(cfg config.Config) utils.RateTable {
	r := utils.RateTable{models.CurrencyINR: 1}
	if cfg.RateUSD > 0 {
		r[models.CurrencyUSD] = cfg.RateUSD
	}
	if cfg.RateEUR > 0 {
		r[models.CurrencyEUR] = cfg.RateEUR
	}
	return r
}

// Start restores the persisted session and loads the public lists. List
// failures are recorded on their stores and logged; only a failed session
// restore is returned.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.Restore(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.Treatments.Refresh(gctx)
		return err
	})
	g.Go(func() error {
		_, err := a.Packages.Refresh(gctx)
		return err
	})
	g.Go(func() error {
		return a.Content.RefreshAll(gctx)
	})
	if err := g.Wait(); err != nil {
		a.Logger.Warn("app: initial load incomplete", zap.Error(err))
	}

	if a.Session.IsAuthenticated() {
		if _, err := a.Booking.Bookings(ctx); err != nil {
			a.Logger.Warn("app: could not load bookings", zap.Error(err))
		}
	}
	if a.Session.IsAdmin() {
		if err := a.Admin.Load(ctx); err != nil {
			a.Logger.Warn("app: could not load back-office collections", zap.Error(err))
		}
	}
	return nil
}
