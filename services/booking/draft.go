package booking

import (
	"strings"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"
)

// Draft is the booking being assembled. TreatmentID and PackageID are
// never both set; Amount is always in Currency.
type Draft struct {
	ID              string
	TreatmentID     string
	PackageID       string
	TherapistID     string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	DurationMinutes int
	Currency        models.Currency
	Amount          float64
	Customer        models.CustomerInfo
	Medical         models.MedicalInfo
	Notes           string
}

// Validate checks everything the server would need to create the booking.
func (d Draft) Validate(now time.Time, loc *time.Location) error {
	fields := map[string]string{}
	switch {
	case d.TreatmentID == "" && d.PackageID == "":
		fields["treatmentId"] = "choose a treatment or a package"
	case d.TreatmentID != "" && d.PackageID != "":
		fields["treatmentId"] = "choose either a treatment or a package"
	}
	if d.Date == "" {
		fields["date"] = "is required"
	} else if _, err := time.Parse(utils.DateLayout, d.Date); err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	if d.Time == "" {
		fields["time"] = "is required"
	} else if _, err := time.Parse(utils.TimeLayout, d.Time); err != nil {
		fields["time"] = "must be HH:MM"
	}
	if _, ok := fields["date"]; !ok {
		if _, ok := fields["time"]; !ok {
			at, _ := time.ParseInLocation(utils.DateLayout+" "+utils.TimeLayout, d.Date+" "+d.Time, loc)
			if !at.After(now) {
				fields["date"] = "must be in the future"
			}
		}
	}
	if !d.Currency.Supported() {
		fields["currency"] = "is not supported"
	}
	if d.Amount <= 0 {
		fields["amount"] = "could not be priced"
	}
	if strings.TrimSpace(d.Customer.Name) == "" {
		fields["customer.name"] = "is required"
	}
	if !utils.ValidEmail(d.Customer.Email) {
		fields["customer.email"] = "must be a valid email"
	}
	if strings.TrimSpace(d.Customer.Phone) == "" {
		fields["customer.phone"] = "is required"
	}
	if d.Customer.Age < 0 || d.Customer.Age > 120 {
		fields["customer.age"] = "is out of range"
	}
	if len(fields) > 0 {
		return gateway.NewValidationError(fields)
	}
	return nil
}

// Request is the create payload for the draft.
func (d Draft) Request() models.CreateBookingRequest {
	req := models.CreateBookingRequest{
		TreatmentID:     d.TreatmentID,
		PackageID:       d.PackageID,
		TherapistID:     d.TherapistID,
		Date:            d.Date,
		Time:            d.Time,
		DurationMinutes: d.DurationMinutes,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Notes:           strings.TrimSpace(d.Notes),
		Customer:        d.Customer,
	}
	if !d.Medical.Empty() {
		medical := d.Medical
		req.Medical = &medical
	}
	return req
}
