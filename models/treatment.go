package models

import "time"

type TreatmentStatus string

const (
	TreatmentActive   TreatmentStatus = "active"
	TreatmentInactive TreatmentStatus = "inactive"
)

// Treatment is a single bookable therapy session. Prices lists the price
// per display currency where the catalog publishes one.
type Treatment struct {
	ID                string               `json:"id" mapstructure:"id" csv:"id"`
	Name              string               `json:"name" mapstructure:"name" csv:"name"`
	Slug              string               `json:"slug,omitempty" mapstructure:"slug" csv:"slug"`
	Description       string               `json:"description,omitempty" mapstructure:"description" csv:"-"`
	Category          string               `json:"category" mapstructure:"category" csv:"category"`
	DurationMinutes   int                  `json:"durationMinutes" mapstructure:"durationMinutes" csv:"duration_minutes"`
	Price             float64              `json:"price" mapstructure:"price" csv:"price"`
	Currency          Currency             `json:"currency" mapstructure:"currency" csv:"currency"`
	Prices            map[Currency]float64 `json:"prices,omitempty" mapstructure:"prices" csv:"-"`
	Rating            float64              `json:"rating" mapstructure:"rating" csv:"rating"`
	ReviewCount       int                  `json:"reviewCount,omitempty" mapstructure:"reviewCount" csv:"review_count"`
	TherapistIDs      []string             `json:"therapistIds,omitempty" mapstructure:"therapistIds" csv:"-"`
	Tags              []string             `json:"tags,omitempty" mapstructure:"tags" csv:"-"`
	Benefits          []string             `json:"benefits,omitempty" mapstructure:"benefits" csv:"-"`
	Contraindications []string             `json:"contraindications,omitempty" mapstructure:"contraindications" csv:"-"`
	Status            TreatmentStatus      `json:"status" mapstructure:"status" csv:"status"`
	CreatedAt         time.Time            `json:"createdAt" mapstructure:"createdAt" csv:"created_at"`
	UpdatedAt         time.Time            `json:"updatedAt" mapstructure:"updatedAt" csv:"updated_at"`
}

// ListedPrice returns the price listed in cur, if any.
func (t Treatment) ListedPrice(cur Currency) (float64, bool) {
	if p, ok := t.Prices[cur]; ok {
		return p, true
	}
	if t.Currency == cur {
		return t.Price, true
	}
	return 0, false
}

func (t Treatment) Attributes() Attributes {
	return Attributes{
		Text:     []string{t.Name, t.Description},
		Category: t.Category,
		Status:   string(t.Status),
		Tags:     t.Tags,
		Price:    t.Price,
		Duration: t.DurationMinutes,
		Rating:   t.Rating,
	}
}

func (t Treatment) SortValue(field string) any {
	switch field {
	case "name":
		return t.Name
	case "price":
		return t.Price
	case "duration", "durationMinutes":
		return t.DurationMinutes
	case "rating":
		return t.Rating
	case "category":
		return t.Category
	case "status":
		return string(t.Status)
	case "createdAt":
		return t.CreatedAt
	case "updatedAt":
		return t.UpdatedAt
	}
	return nil
}

// TreatmentCategory is one entry of GET /treatments/categories.
type TreatmentCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// RatingRequest is the body of the rate endpoints.
type RatingRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}
