package models

import "time"

// Package is a multi-day programme composed of treatments.
type Package struct {
	ID           string               `json:"id" mapstructure:"id"`
	Name         string               `json:"name" mapstructure:"name"`
	Type         string               `json:"type" mapstructure:"type"` // e.g. "panchakarma", "rejuvenation"
	City         string               `json:"city" mapstructure:"city"`
	Description  string               `json:"description,omitempty" mapstructure:"description"`
	DurationDays int                  `json:"durationDays" mapstructure:"durationDays"`
	Price        float64              `json:"price" mapstructure:"price"`
	Currency     Currency             `json:"currency" mapstructure:"currency"`
	Prices       map[Currency]float64 `json:"prices,omitempty" mapstructure:"prices"`
	Inclusions   []string             `json:"inclusions,omitempty" mapstructure:"inclusions"`
	TreatmentIDs []string             `json:"treatmentIds,omitempty" mapstructure:"treatmentIds"`
	Tags         []string             `json:"tags,omitempty" mapstructure:"tags"`
	Rating       float64              `json:"rating" mapstructure:"rating"`
	CreatedAt    time.Time            `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" mapstructure:"updatedAt"`
}

// ListedPrice returns the price listed in cur, if any.
func (p Package) ListedPrice(cur Currency) (float64, bool) {
	if v, ok := p.Prices[cur]; ok {
		return v, true
	}
	if p.Currency == cur {
		return p.Price, true
	}
	return 0, false
}

func (p Package) Attributes() Attributes {
	return Attributes{
		Text:     append([]string{p.Name, p.Description}, p.Inclusions...),
		Category: p.Type,
		City:     p.City,
		Tags:     p.Tags,
		Price:    p.Price,
		Duration: p.DurationDays,
		Rating:   p.Rating,
	}
}

func (p Package) SortValue(field string) any {
	switch field {
	case "name":
		return p.Name
	case "price":
		return p.Price
	case "duration", "durationDays":
		return p.DurationDays
	case "rating":
		return p.Rating
	case "city":
		return p.City
	case "createdAt":
		return p.CreatedAt
	}
	return nil
}

// PackageAvailability is the response of GET /packages/:id/availability.
type PackageAvailability struct {
	PackageID  string   `json:"packageId"`
	Month      string   `json:"month,omitempty"` // YYYY-MM
	StartDates []string `json:"startDates"`      // YYYY-MM-DD
	SlotsLeft  int      `json:"slotsLeft,omitempty"`
}

// PackagePricing is the response of GET /packages/:id/pricing.
type PackagePricing struct {
	PackageID string   `json:"packageId"`
	Currency  Currency `json:"currency"`
	BasePrice float64  `json:"basePrice"`
	Taxes     float64  `json:"taxes,omitempty"`
	Discount  float64  `json:"discount,omitempty"`
	Total     float64  `json:"total"`
}
