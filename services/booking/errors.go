package booking

import (
	"fmt"

	"ayurbook/models"

	"github.com/pkg/errors"
)

// InvalidTransitionError rejects a lifecycle step locally, before any
// request is made.
type InvalidTransitionError struct {
	BookingID string
	Action    string
	From      models.BookingStatus
	To        models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("invalidTransition: booking %s cannot move from %s to %s", e.BookingID, e.From, e.To)
	}
	if e.BookingID == "" {
		return fmt.Sprintf("invalidTransition: cannot %s in state %s", e.Action, e.From)
	}
	return fmt.Sprintf("invalidTransition: cannot %s booking %s while %s", e.Action, e.BookingID, e.From)
}

// SelectionConflictError rejects a draft change that contradicts what is
// already selected.
type SelectionConflictError struct {
	Field  string
	Reason string
}

func (e *SelectionConflictError) Error() string {
	return fmt.Sprintf("selectionConflict: %s: %s", e.Field, e.Reason)
}

func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

func IsSelectionConflict(err error) bool {
	var target *SelectionConflictError
	return errors.As(err, &target)
}
