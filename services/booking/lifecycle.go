package booking

import (
	"context"
	"strings"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// command is one optimistic change to a booking: apply runs tentatively on
// the local copy, send performs the request. A failed send restores the
// previous copy; a successful one commits the server's version.
type command struct {
	bookingID string
	action    string
	target    models.BookingStatus // "" when the status does not change
	check     func(b models.Booking) error
	apply     func(b *models.Booking)
	send      func(ctx context.Context) (models.Booking, error)
}

func (w *Workflow) run(ctx context.Context, cmd command) (*models.Booking, error) {
	if _, err := w.ensureLoaded(ctx, cmd.bookingID); err != nil {
		return nil, err
	}

	w.mu.Lock()
	b := w.findLocked(cmd.bookingID)
	if b == nil {
		w.mu.Unlock()
		return nil, &gateway.APIError{Kind: gateway.KindNotFound, Message: "booking " + cmd.bookingID + " not found"}
	}
	if cmd.target != "" && !b.Status.CanTransitionTo(cmd.target) {
		from := b.Status
		w.mu.Unlock()
		return nil, &InvalidTransitionError{BookingID: cmd.bookingID, Action: cmd.action, From: from, To: cmd.target}
	}
	if cmd.check != nil {
		if err := cmd.check(*b); err != nil {
			w.mu.Unlock()
			return nil, err
		}
	}
	prev := *b
	cmd.apply(b)
	b.UpdatedAt = w.Now()
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookings)

	saved, err := cmd.send(ctx)

	w.mu.Lock()
	if err != nil {
		if cur := w.findLocked(cmd.bookingID); cur != nil {
			*cur = prev
		}
		w.mu.Unlock()
		w.events.Publish(utils.TopicBookings)
		w.logger.Sugar().Infof("[Booking] %s %s rolled back: %v", cmd.action, cmd.bookingID, err)
		return nil, err
	}
	cur := w.findLocked(cmd.bookingID)
	if cur != nil && saved.ID != "" {
		*cur = saved
	}
	var out models.Booking
	if cur != nil {
		out = *cur
	} else {
		out = saved
	}
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookings)
	w.logger.Debug("[Booking] command committed", zap.String("action", cmd.action), zap.String("bookingID", cmd.bookingID))
	return &out, nil
}

func (w *Workflow) post(path string, body interface{}) func(ctx context.Context) (models.Booking, error) {
	return func(ctx context.Context) (models.Booking, error) {
		var out models.Booking
		err := w.client.Post(ctx, path, body, &out)
		return out, err
	}
}

func bookingPath(id, action string) string {
	p := "/bookings/" + gateway.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// Confirm moves a pending booking to confirmed.
func (w *Workflow) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	return w.run(ctx, command{
		bookingID: id,
		action:    "confirm",
		target:    models.BookingConfirmed,
		apply:     func(b *models.Booking) { b.Status = models.BookingConfirmed },
		send:      w.post(bookingPath(id, "confirm"), struct{}{}),
	})
}

// Cancel cancels a pending or confirmed booking. A reason is required.
func (w *Workflow) Cancel(ctx context.Context, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	return w.run(ctx, command{
		bookingID: id,
		action:    "cancel",
		target:    models.BookingCancelled,
		check: func(models.Booking) error {
			if reason == "" {
				return gateway.NewValidationError(map[string]string{"reason": "is required"})
			}
			return nil
		},
		apply: func(b *models.Booking) {
			b.Status = models.BookingCancelled
			b.CancellationReason = reason
		},
		send: w.post(bookingPath(id, "cancel"), models.CancelRequest{Reason: reason}),
	})
}

// Reschedule replaces the date and time of a pending or confirmed booking.
// The status does not change.
func (w *Workflow) Reschedule(ctx context.Context, id, date, hhmm string) (*models.Booking, error) {
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
		return nil, gateway.NewValidationError(fields)
	}
	return w.run(ctx, command{
		bookingID: id,
		action:    "reschedule",
		check: func(b models.Booking) error {
			if !b.Status.Reschedulable() {
				return &InvalidTransitionError{BookingID: id, Action: "reschedule", From: b.Status}
			}
			moved := b
			moved.Date, moved.Time = d, t
			at, err := moved.ScheduledAt(w.Location)
			if err != nil || !at.After(w.Now()) {
				return gateway.NewValidationError(map[string]string{"date": "must be in the future"})
			}
			return nil
		},
		apply: func(b *models.Booking) { b.Date, b.Time = d, t },
		send:  w.post(bookingPath(id, "reschedule"), models.RescheduleRequest{Date: d, Time: t}),
	})
}

// Complete marks a confirmed booking as completed. Only an admin may do it,
// and only once the scheduled slot has started.
func (w *Workflow) Complete(ctx context.Context, id string) (*models.Booking, error) {
	if w.auth == nil || !w.auth.IsAdmin() {
		return nil, &gateway.APIError{Kind: gateway.KindForbidden, Message: "only an administrator can complete a booking"}
	}
	status := models.BookingCompleted
	return w.run(ctx, command{
		bookingID: id,
		action:    "complete",
		target:    models.BookingCompleted,
		check: func(b models.Booking) error {
			at, err := b.ScheduledAt(w.Location)
			if err != nil {
				return err
			}
			if w.Now().Before(at) {
				return &InvalidTransitionError{BookingID: id, Action: "complete a booking scheduled for " + b.Date + " " + b.Time, From: b.Status}
			}
			return nil
		},
		apply: func(b *models.Booking) { b.Status = models.BookingCompleted },
		send: func(ctx context.Context) (models.Booking, error) {
			var out models.Booking
			err := w.client.Put(ctx, bookingPath(id, ""), models.BookingUpdateRequest{Status: &status}, &out)
			return out, err
		},
	})
}

// Rate attaches a 1..5 rating to a completed booking.
func (w *Workflow) Rate(ctx context.Context, id string, rating int, review string) (*models.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, gateway.NewValidationError(map[string]string{"rating": "must be between 1 and 5"})
	}
	review = strings.TrimSpace(review)
	return w.run(ctx, command{
		bookingID: id,
		action:    "rate",
		check: func(b models.Booking) error {
			if b.Status != models.BookingCompleted {
				return &InvalidTransitionError{BookingID: id, Action: "rate", From: b.Status}
			}
			return nil
		},
		apply: func(b *models.Booking) {
			r := rating
			b.Rating = &r
			b.Review = review
		},
		send: w.post(bookingPath(id, "rate"), models.RatingRequest{Rating: rating, Review: review}),
	})
}

// Update changes the notes of a booking that is not yet terminal.
func (w *Workflow) Update(ctx context.Context, id, notes string) (*models.Booking, error) {
	return w.run(ctx, command{
		bookingID: id,
		action:    "update",
		check: func(b models.Booking) error {
			if b.Status.Terminal() {
				return &InvalidTransitionError{BookingID: id, Action: "edit", From: b.Status}
			}
			return nil
		},
		apply: func(b *models.Booking) { b.Notes = notes },
		send: func(ctx context.Context) (models.Booking, error) {
			var out models.Booking
			err := w.client.Put(ctx, bookingPath(id, ""), models.BookingUpdateRequest{Notes: &notes}, &out)
			return out, err
		},
	})
}
