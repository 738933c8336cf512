package booking

import (
	"context"
	"strings"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewDraft discards the current draft and starts an empty one.
func (w *Workflow) NewDraft() Draft {
	w.mu.Lock()
	w.draft = Draft{ID: uuid.New().String(), Currency: w.defaultCur}
	w.treatment, w.pkg, w.therapist = nil, nil, nil
	w.current = ""
	d := w.draft
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookingDraft)
	return d
}

// Draft returns a copy of the draft.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// State reports the lifecycle state of the active draft.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workflow) stateLocked() State {
	if w.submitting {
		return StateSubmitted
	}
	if w.current == "" {
		return StateDrafting
	}
	if b := w.findLocked(w.current); b != nil {
		return State(b.Status)
	}
	return StatePending
}

// editable runs fn on the draft when the workflow is still drafting.
func (w *Workflow) editable(action string, fn func() error) error {
	w.mu.Lock()
	if st := w.stateLocked(); st != StateDrafting {
		w.mu.Unlock()
		return &InvalidTransitionError{Action: action, From: models.BookingStatus(st)}
	}
	err := fn()
	w.mu.Unlock()
	if err == nil {
		w.events.Publish(utils.TopicBookingDraft)
	}
	return err
}

// SelectTreatment selects treatment id and clears any selected package.
func (w *Workflow) SelectTreatment(ctx context.Context, id string) error {
	if st := w.State(); st != StateDrafting {
		return &InvalidTransitionError{Action: "select a treatment", From: models.BookingStatus(st)}
	}
	t, err := w.treatments.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == models.TreatmentInactive {
		return &SelectionConflictError{Field: "treatmentId", Reason: t.Name + " is not currently offered"}
	}
	return w.editable("select a treatment", func() error {
		w.draft.TreatmentID = t.ID
		w.draft.PackageID = ""
		w.draft.DurationMinutes = t.DurationMinutes
		w.treatment, w.pkg = t, nil
		if w.therapist != nil && !performs(*t, w.therapist.ID) {
			w.logger.Sugar().Infof("[Booking] therapist %s does not perform %s, clearing", w.therapist.ID, t.ID)
			w.therapist = nil
			w.draft.TherapistID = ""
		}
		return w.repriceLocked()
	})
}

// SelectPackage selects package id and clears any selected treatment and
// therapist.
func (w *Workflow) SelectPackage(ctx context.Context, id string) error {
	if st := w.State(); st != StateDrafting {
		return &InvalidTransitionError{Action: "select a package", From: models.BookingStatus(st)}
	}
	p, err := w.packages.Get(ctx, id)
	if err != nil {
		return err
	}
	return w.editable("select a package", func() error {
		w.draft.PackageID = p.ID
		w.draft.TreatmentID = ""
		w.draft.TherapistID = ""
		w.draft.DurationMinutes = 0
		w.pkg, w.treatment, w.therapist = p, nil, nil
		return w.repriceLocked()
	})
}

func (w *Workflow) ClearSelection() error {
	return w.editable("clear the selection", func() error {
		w.draft.TreatmentID, w.draft.PackageID, w.draft.TherapistID = "", "", ""
		w.draft.DurationMinutes = 0
		w.draft.Amount = 0
		w.treatment, w.pkg, w.therapist = nil, nil, nil
		return nil
	})
}

func performs(t models.Treatment, therapistID string) bool {
	if len(t.TherapistIDs) == 0 {
		return true
	}
	for _, id := range t.TherapistIDs {
		if id == therapistID {
			return true
		}
	}
	return false
}

// SelectTherapist picks who performs the treatment. The therapist must
// perform the selected treatment and be free at the chosen slot.
func (w *Workflow) SelectTherapist(t models.Therapist) error {
	return w.editable("select a therapist", func() error {
		if w.draft.PackageID != "" {
			return &SelectionConflictError{Field: "therapistId", Reason: "packages are assigned a care team"}
		}
		if w.treatment != nil && !performs(*w.treatment, t.ID) {
			return &SelectionConflictError{Field: "therapistId", Reason: t.Name + " does not perform " + w.treatment.Name}
		}
		if w.draft.Date != "" && w.draft.Time != "" {
			day, err := utils.Weekday(w.draft.Date)
			if err == nil && !t.AvailableAt(day, w.draft.Time) {
				return &SelectionConflictError{Field: "therapistId", Reason: t.Name + " is not available on " + day + " at " + w.draft.Time}
			}
		}
		therapist := t
		w.therapist = &therapist
		w.draft.TherapistID = t.ID
		return nil
	})
}

// SetSchedule sets the date and time, accepting common layouts.
func (w *Workflow) SetSchedule(date, hhmm string) error {
	d, derr := utils.NormalizeDate(date)
	t, terr := utils.NormalizeTime(hhmm)
	if derr != nil || terr != nil {
		fields := map[string]string{}
		if derr != nil {
			fields["date"] = derr.Error()
		}
		if terr != nil {
			fields["time"] = terr.Error()
		}
		return gateway.NewValidationError(fields)
	}
	return w.editable("change the schedule", func() error {
		if w.therapist != nil {
			day, err := utils.Weekday(d)
			if err == nil && !w.therapist.AvailableAt(day, t) {
				return &SelectionConflictError{Field: "time", Reason: w.therapist.Name + " is not available on " + day + " at " + t}
			}
		}
		w.draft.Date, w.draft.Time = d, t
		return nil
	})
}

// SetCurrency switches the draft currency and re-derives the amount.
// The selection is unaffected.
func (w *Workflow) SetCurrency(cur models.Currency) error {
	parsed, err := models.ParseCurrency(string(cur))
	if err != nil {
		return gateway.NewValidationError(map[string]string{"currency": err.Error()})
	}
	return w.editable("change the currency", func() error {
		prev := w.draft.Currency
		w.draft.Currency = parsed
		if err := w.repriceLocked(); err != nil {
			w.draft.Currency = prev
			_ = w.repriceLocked()
			return err
		}
		return nil
	})
}

func (w *Workflow) SetCustomer(info models.CustomerInfo) error {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	return w.editable("edit customer details", func() error {
		w.draft.Customer = info
		return nil
	})
}

// SetMedical stores the medical questionnaire. It never blocks the booking;
// the returned notes list conditions the selected treatment lists as
// contraindications, for the clinic to review.
func (w *Workflow) SetMedical(info models.MedicalInfo) ([]string, error) {
	var notes []string
	err := w.editable("edit medical details", func() error {
		w.draft.Medical = info
		notes = w.advisoriesLocked()
		return nil
	})
	return notes, err
}

// Advisories lists the contraindication matches for the current draft.
func (w *Workflow) Advisories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.advisoriesLocked()
}

func (w *Workflow) advisoriesLocked() []string {
	if w.treatment == nil {
		return nil
	}
	var out []string
	for _, c := range w.treatment.Contraindications {
		for _, cond := range w.draft.Medical.Conditions {
			if strings.Contains(strings.ToLower(cond), strings.ToLower(c)) {
				out = append(out, w.treatment.Name+" is contraindicated for "+c)
			}
		}
	}
	return out
}

func (w *Workflow) SetNotes(notes string) error {
	return w.editable("edit notes", func() error {
		w.draft.Notes = notes
		return nil
	})
}

// repriceLocked derives Amount from the selection in the draft currency.
func (w *Workflow) repriceLocked() error {
	var (
		amount float64
		err    error
	)
	switch {
	case w.treatment != nil:
		amount, err = Quote(*w.treatment, w.draft.Currency, w.rates)
	case w.pkg != nil:
		amount, err = QuotePackage(*w.pkg, w.draft.Currency, w.rates)
	default:
		w.draft.Amount = 0
		return nil
	}
	if err != nil {
		return err
	}
	w.draft.Amount = amount
	return nil
}

// Submit validates the draft and creates the booking. On failure the
// workflow is back in drafting with the draft untouched.
func (w *Workflow) Submit(ctx context.Context) (*models.Booking, error) {
	w.mu.Lock()
	if st := w.stateLocked(); st != StateDrafting {
		w.mu.Unlock()
		return nil, &InvalidTransitionError{Action: "submit", From: models.BookingStatus(st)}
	}
	if err := w.draft.Validate(w.Now(), w.Location); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	req := w.draft.Request()
	w.submitting = true
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookingDraft)

	var created models.Booking
	err := w.client.Post(ctx, "/bookings", req, &created)

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		w.mu.Unlock()
		w.events.Publish(utils.TopicBookingDraft)
		w.logger.Sugar().Infof("[Booking] submit failed: %v", err)
		return nil, errors.Wrap(err, "submit booking")
	}
	if created.Status == "" {
		created.Status = models.BookingPending
	}
	w.current = created.ID
	w.bookings = append([]models.Booking{created}, w.bookings...)
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookingDraft)
	w.events.Publish(utils.TopicBookings)
	w.logger.Info("[Booking] created", zap.String("bookingID", created.ID), zap.String("status", string(created.Status)))

	if w.autoConfirm && created.Status == models.BookingPending {
		confirmed, err := w.Confirm(ctx, created.ID)
		if err != nil {
			return &created, errors.Wrap(err, "auto-confirm")
		}
		return confirmed, nil
	}
	return &created, nil
}
