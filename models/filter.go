package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Criteria holds the filter-defining fields. Every set field narrows the
// result; unset fields (zero values) do not participate.
type Criteria struct {
	Search      string  `json:"search,omitempty"`
	Category    string  `json:"category,omitempty"` // treatment category, package type, article category, user role
	City        string  `json:"city,omitempty"`
	Status      string  `json:"status,omitempty"`
	Tag         string  `json:"tag,omitempty"`
	MinPrice    float64 `json:"minPrice,omitempty"`
	MaxPrice    float64 `json:"maxPrice,omitempty"`
	MinDuration int     `json:"minDuration,omitempty"`
	MaxDuration int     `json:"maxDuration,omitempty"`
	MinRating   float64 `json:"minRating,omitempty"`
}

// Sort names the field to order by. An empty Field keeps the backing order.
type Sort struct {
	Field string    `json:"sortBy,omitempty"`
	Order SortOrder `json:"sortOrder,omitempty"`
}

// Filter is the complete list view state: criteria, sort and pagination.
type Filter struct {
	Criteria
	Sort         Sort `json:"sort"`
	CurrentPage  int  `json:"currentPage"`
	ItemsPerPage int  `json:"itemsPerPage"`
}

// NewFilter returns an empty filter on page 1.
func NewFilter(perPage int) Filter {
	return Filter{CurrentPage: 1, ItemsPerPage: perPage}
}

// WithCriteria replaces the criteria and resets the page to 1.
func (f Filter) WithCriteria(c Criteria) Filter {
	f.Criteria = c
	f.CurrentPage = 1
	return f
}

// WithSort replaces the sort and keeps the current page.
func (f Filter) WithSort(s Sort) Filter {
	f.Sort = s
	return f
}

// WithPage moves to page n (values below 1 mean 1).
func (f Filter) WithPage(n int) Filter {
	if n < 1 {
		n = 1
	}
	f.CurrentPage = n
	return f
}

// Values encodes the criteria and sort as query parameters.
func (f Filter) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s = strings.TrimSpace(s); s != "" {
			v.Set(k, s)
		}
	}
	set("search", f.Search)
	set("category", f.Category)
	set("city", f.City)
	set("status", f.Status)
	set("tag", f.Tag)
	if f.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.MinDuration > 0 {
		v.Set("minDuration", strconv.Itoa(f.MinDuration))
	}
	if f.MaxDuration > 0 {
		v.Set("maxDuration", strconv.Itoa(f.MaxDuration))
	}
	if f.MinRating > 0 {
		v.Set("minRating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	set("sortBy", f.Sort.Field)
	set("sortOrder", string(f.Sort.Order))
	return v
}

// Attributes is the projection of a record that the criteria are matched against.
type Attributes struct {
	Text     []string
	Category string
	City     string
	Status   string
	Tags     []string
	Price    float64
	Duration int
	Rating   float64
}

// Record is anything that can be listed through a Filter.
type Record interface {
	Attributes() Attributes
	SortValue(field string) any
}

// Matches reports whether a satisfies every set field of c.
func (c Criteria) Matches(a Attributes) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		found := false
		for _, t := range append(append([]string{}, a.Text...), a.Tags...) {
			if strings.Contains(strings.ToLower(t), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.Category != "" && !strings.EqualFold(c.Category, a.Category) {
		return false
	}
	if c.City != "" && !strings.EqualFold(c.City, a.City) {
		return false
	}
	if c.Status != "" && !strings.EqualFold(c.Status, a.Status) {
		return false
	}
	if c.Tag != "" {
		found := false
		for _, t := range a.Tags {
			if strings.EqualFold(t, c.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.MinPrice > 0 && a.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && a.Price > c.MaxPrice {
		return false
	}
	if c.MinDuration > 0 && a.Duration < c.MinDuration {
		return false
	}
	if c.MaxDuration > 0 && a.Duration > c.MaxDuration {
		return false
	}
	if c.MinRating > 0 && a.Rating < c.MinRating {
		return false
	}
	return true
}

// Select returns the records of items matching c, preserving order.
func Select[T Record](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Matches(it.Attributes()) {
			out = append(out, it)
		}
	}
	return out
}

// SortRecords returns a sorted copy of items. Ties keep their relative order.
func SortRecords[T Record](items []T, s Sort) []T {
	out := append([]T(nil), items...)
	if s.Field == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareValues(out[i].SortValue(s.Field), out[j].SortValue(s.Field))
		if s.Order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// Apply filters, sorts and paginates items according to f.
func Apply[T Record](items []T, f Filter) Page[T] {
	return Paginate(SortRecords(Select(items, f.Criteria), f.Sort), f.CurrentPage, f.ItemsPerPage)
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case string:
		as, bs := strings.ToLower(av), strings.ToLower(cast.ToString(b))
		return strings.Compare(as, bs)
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}
