package models

// Page is one page of a filtered collection. TotalPages is derived from
// TotalItems and ItemsPerPage and is never taken from the server.
type Page[T any] struct {
	Items        []T `json:"items"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// TotalPages returns ceil(total/perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate slices items for page (1-based). A page past the end is empty.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = len(items)
		if perPage == 0 {
			perPage = 1
		}
	}
	p := Page[T]{
		Items:        []T{},
		TotalItems:   len(items),
		TotalPages:   TotalPages(len(items), perPage),
		CurrentPage:  page,
		ItemsPerPage: perPage,
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return p
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	p.Items = append(p.Items, items[start:end]...)
	return p
}
