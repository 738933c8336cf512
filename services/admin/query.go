package admin

import (
	"ayurbook/models"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Query sets the filter and returns the matching page together with the
// aggregates of every matching record.
func (c *Collection[T]) Query(f models.Filter) Result[T] {
	c.mu.Lock()
	if f.ItemsPerPage <= 0 {
		f.ItemsPerPage = c.filter.ItemsPerPage
	}
	if f.Criteria != c.filter.Criteria || f.CurrentPage < 1 {
		f.CurrentPage = 1
	}
	c.filter = f
	c.mu.Unlock()
	return c.Current()
}

// Current re-derives the result for the current filter against the current
// backing set.
func (c *Collection[T]) Current() Result[T] {
	c.mu.RLock()
	f := c.filter
	matched := models.Select(c.items, f.Criteria)
	c.mu.RUnlock()

	return Result[T]{
		Filter: f,
		Page:   models.Paginate(models.SortRecords(matched, f.Sort), f.CurrentPage, f.ItemsPerPage),
		Stats:  c.aggregate(matched),
	}
}

func (c *Collection[T]) aggregate(items []T) Stats {
	st := Stats{Total: len(items)}
	var amounts, ratings stats.Float64Data
	for _, it := range items {
		if c.schema.Active != nil && c.schema.Active(it) {
			st.Active++
		}
		if c.schema.Amount != nil {
			amounts = append(amounts, c.schema.Amount(it))
		}
		if c.schema.Rating != nil {
			if r, ok := c.schema.Rating(it); ok {
				ratings = append(ratings, r)
			}
		}
	}
	// Both return EmptyInputErr on no data; zero is the right answer then.
	if sum, err := stats.Sum(amounts); err == nil {
		st.AmountSum = sum
	}
	if mean, err := stats.Mean(ratings); err == nil {
		st.AverageRating, _ = stats.Round(mean, 2)
	}
	st.Rated = len(ratings)
	return st
}

// ExportCSV encodes every record matching the current filter, in the
// current sort order, ignoring pagination.
func (c *Collection[T]) ExportCSV() ([]byte, error) {
	c.mu.RLock()
	f := c.filter
	rows := models.SortRecords(models.Select(c.items, f.Criteria), f.Sort)
	c.mu.RUnlock()
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, errors.Wrapf(err, "export %s", c.schema.Name)
	}
	return out, nil
}
