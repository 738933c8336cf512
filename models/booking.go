package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the complete set of legal status edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

// ParseBookingStatus validates s as a booking status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// CanTransitionTo reports whether s -> next is a legal edge.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no edge leaves s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Reschedulable reports whether date/time may still change in s.
func (s BookingStatus) Reschedulable() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking represents a submitted booking record.
type Booking struct {
	ID                 string        `json:"id" mapstructure:"id" csv:"id"`
	CustomerID         string        `json:"customerId" mapstructure:"customerId" csv:"customer_id"`
	TreatmentID        string        `json:"treatmentId,omitempty" mapstructure:"treatmentId" csv:"treatment_id"`
	PackageID          string        `json:"packageId,omitempty" mapstructure:"packageId" csv:"package_id"`
	TherapistID        string        `json:"therapistId,omitempty" mapstructure:"therapistId" csv:"therapist_id"`
	Date               string        `json:"date" mapstructure:"date" csv:"date"` // YYYY-MM-DD
	Time               string        `json:"time" mapstructure:"time" csv:"time"` // HH:MM
	DurationMinutes    int           `json:"durationMinutes" mapstructure:"durationMinutes" csv:"duration_minutes"`
	Amount             float64       `json:"amount" mapstructure:"amount" csv:"amount"`
	Currency           Currency      `json:"currency" mapstructure:"currency" csv:"currency"`
	Status             BookingStatus `json:"status" mapstructure:"status" csv:"status"`
	Notes              string        `json:"notes,omitempty" mapstructure:"notes" csv:"notes"`
	Customer           *CustomerInfo `json:"customer,omitempty" mapstructure:"customer" csv:"-"`
	Medical            *MedicalInfo  `json:"medical,omitempty" mapstructure:"medical" csv:"-"`
	CancellationReason string        `json:"cancellationReason,omitempty" mapstructure:"cancellationReason" csv:"cancellation_reason"`
	Rating             *int          `json:"rating,omitempty" mapstructure:"rating" csv:"-"`
	Review             string        `json:"review,omitempty" mapstructure:"review" csv:"-"`
	CreatedAt          time.Time     `json:"createdAt" mapstructure:"createdAt" csv:"created_at"`
	UpdatedAt          time.Time     `json:"updatedAt" mapstructure:"updatedAt" csv:"updated_at"`
}

// ScheduledAt returns the booked start in loc.
func (b Booking) ScheduledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("booking %s has an invalid schedule %q %q: %w", b.ID, b.Date, b.Time, err)
	}
	return t, nil
}

// Kind is "package" for package bookings and "treatment" otherwise.
func (b Booking) Kind() string {
	if b.PackageID != "" {
		return "package"
	}
	return "treatment"
}

func (b Booking) Attributes() Attributes {
	text := []string{b.ID, b.TreatmentID, b.PackageID, b.TherapistID, b.Notes}
	if b.Customer != nil {
		text = append(text, b.Customer.Name, b.Customer.Email, b.Customer.Phone)
	}
	a := Attributes{
		Text:     text,
		Category: b.Kind(),
		Status:   string(b.Status),
		Price:    b.Amount,
		Duration: b.DurationMinutes,
	}
	if b.Rating != nil {
		a.Rating = float64(*b.Rating)
	}
	return a
}

func (b Booking) SortValue(field string) any {
	switch field {
	case "date":
		return b.Date + " " + b.Time
	case "amount":
		return b.Amount
	case "status":
		return string(b.Status)
	case "rating":
		if b.Rating != nil {
			return *b.Rating
		}
		return 0
	case "customer":
		if b.Customer != nil {
			return b.Customer.Name
		}
		return ""
	case "createdAt":
		return b.CreatedAt
	case "updatedAt":
		return b.UpdatedAt
	}
	return nil
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	TreatmentID     string        `json:"treatmentId,omitempty"`
	PackageID       string        `json:"packageId,omitempty"`
	TherapistID     string        `json:"therapistId,omitempty"`
	Date            string        `json:"date"`
	Time            string        `json:"time"`
	DurationMinutes int           `json:"durationMinutes"`
	Amount          float64       `json:"amount"`
	Currency        Currency      `json:"currency"`
	Notes           string        `json:"notes,omitempty"`
	Customer        CustomerInfo  `json:"customer"`
	Medical         *MedicalInfo  `json:"medical,omitempty"`
	Status          BookingStatus `json:"status,omitempty"`
}

// CancelRequest is the body of POST /bookings/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// RescheduleRequest is the body of POST /bookings/:id/reschedule.
type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// BookingUpdateRequest is the body of PUT /bookings/:id. Nil fields are left untouched.
type BookingUpdateRequest struct {
	Notes  *string        `json:"notes,omitempty"`
	Status *BookingStatus `json:"status,omitempty"`
}
