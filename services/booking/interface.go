package booking

import (
	"context"
	"sync"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// State is where the active draft is in its lifecycle.
type State string

const (
	StateDrafting  State = "drafting"
	StateSubmitted State = "submitted"
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// BookingWorkflow drives one draft from selection to a terminal status and
// keeps the signed-in user's bookings.
type BookingWorkflow interface {
	// Drafting
	NewDraft() Draft
	Draft() Draft
	State() State
	SelectTreatment(ctx context.Context, id string) error
	SelectPackage(ctx context.Context, id string) error
	ClearSelection() error
	SelectTherapist(t models.Therapist) error
	SetSchedule(date, hhmm string) error
	SetCurrency(cur models.Currency) error
	SetCustomer(info models.CustomerInfo) error
	SetMedical(info models.MedicalInfo) ([]string, error)
	SetNotes(notes string) error
	Submit(ctx context.Context) (*models.Booking, error)

	// Lifecycle
	Confirm(ctx context.Context, id string) (*models.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*models.Booking, error)
	Reschedule(ctx context.Context, id, date, hhmm string) (*models.Booking, error)
	Complete(ctx context.Context, id string) (*models.Booking, error)
	Rate(ctx context.Context, id string, rating int, review string) (*models.Booking, error)

	// My bookings
	Bookings(ctx context.Context) ([]models.Booking, error)
	Booking(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, id, notes string) (*models.Booking, error)
	List() []models.Booking
}

type TreatmentSource interface {
	Get(ctx context.Context, id string) (*models.Treatment, error)
}

type PackageSource interface {
	Get(ctx context.Context, id string) (*models.Package, error)
}

// Authorizer answers whether the current user may run admin-only steps.
type Authorizer interface {
	IsAdmin() bool
}

// Options configures a Workflow.
type Options struct {
	Client          *gateway.Client
	Treatments      TreatmentSource
	Packages        PackageSource
	Authorizer      Authorizer
	Rates           utils.RateTable
	DefaultCurrency models.Currency
	AutoConfirm     bool
	Events          *utils.Events
	Logger          *zap.Logger
}

// Workflow implements BookingWorkflow. Methods are safe for concurrent use;
// there is one active draft per Workflow.
type Workflow struct {
	client      *gateway.Client
	treatments  TreatmentSource
	packages    PackageSource
	auth        Authorizer
	rates       utils.RateTable
	defaultCur  models.Currency
	autoConfirm bool
	events      *utils.Events
	logger      *zap.Logger

	Now      func() time.Time
	Location *time.Location

	mu         sync.Mutex
	draft      Draft
	treatment  *models.Treatment
	pkg        *models.Package
	therapist  *models.Therapist
	submitting bool
	current    string // id of the booking created from the draft
	bookings   []models.Booking
}

var _ BookingWorkflow = (*Workflow)(nil)

func NewWorkflow(opts Options) *Workflow {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if !opts.DefaultCurrency.Supported() {
		opts.DefaultCurrency = models.CurrencyINR
	}
	if opts.Rates == nil {
		opts.Rates = utils.DefaultRates()
	}
	w := &Workflow{
		client:      opts.Client,
		treatments:  opts.Treatments,
		packages:    opts.Packages,
		auth:        opts.Authorizer,
		rates:       opts.Rates,
		defaultCur:  opts.DefaultCurrency,
		autoConfirm: opts.AutoConfirm,
		events:      opts.Events,
		logger:      opts.Logger,
		Now:         time.Now,
		Location:    time.Local,
	}
	w.NewDraft()
	return w
}
