package admin

import (
	"time"

	"ayurbook/models"
)

// QueryEngine is the back-office view of one entity collection.
// Reads are open; every mutation requires an admin session.
type QueryEngine[T models.Record] interface {
	Create(item T) (T, error)
	Update(id string, patch map[string]interface{}) (T, error)
	RequestDelete(id string) (string, error)
	ConfirmDelete(ticket string) error
	CancelDelete(ticket string)
	BulkSetStatus(ids []string, status string) ([]string, map[string]error)

	Get(id string) (T, bool)
	Query(f models.Filter) Result[T]
	Current() Result[T]
	ExportCSV() ([]byte, error)
}

// Authorizer answers whether the caller holds an admin session.
type Authorizer interface {
	IsAdmin() bool
}

// Schema tells a Collection how to handle one entity type.
type Schema[T models.Record] struct {
	Name string
	ID   func(T) string
	// Stamp assigns the identity and timestamps. created is true on insert.
	Stamp func(item *T, id string, now time.Time, created bool)
	// Validate checks next at now; prev is nil on create.
	Validate func(prev *T, next T, now time.Time) error
	// Active reports whether the record counts as active in aggregates.
	Active func(T) bool
	// Amount is the numeric field summed in aggregates.
	Amount func(T) float64
	// Rating is the rated value, if any, averaged in aggregates.
	Rating func(T) (float64, bool)
}

// Stats is computed from the filtered set, before pagination.
type Stats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	AmountSum     float64 `json:"amountSum"`
	AverageRating float64 `json:"averageRating"`
	Rated         int     `json:"rated"`
}

type Result[T any] struct {
	Filter models.Filter  `json:"filter"`
	Page   models.Page[T] `json:"page"`
	Stats  Stats          `json:"stats"`
}
