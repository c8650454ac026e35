package editlist

import "slices"

// DefaultPageSize matches the dashboard tables.
const DefaultPageSize = 5

// PageSizeOptions are the sizes the page-size selector offers.
var PageSizeOptions = []int{5, 10, 20, 50}

// Pagination is the paging state of a list.
type Pagination struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Pages is the number of pages needed for Total rows; 1 for an empty list.
func (p Pagination) Pages() int {
	if p.Total <= 0 || p.PageSize <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Clamp keeps Current within [1, Pages()].
func (p Pagination) Clamp() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Current < 1 {
		p.Current = 1
	}
	if last := p.Pages(); p.Current > last {
		p.Current = last
	}
	return p
}

// VisibleSlice returns rows[(page-1)*size : page*size], bounded to the
// collection.
func VisibleSlice[T any](rows []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return nil
	}
	end := min(start+size, len(rows))
	return rows[start:end]
}

// RowNumber is the 1-based number shown for the local-th row of a page.
func RowNumber(page, size, local int) int {
	return size*(page-1) + local + 1
}

// SortStable returns a stably sorted copy of rows. Equal rows keep their
// collection order in both directions.
func SortStable[T any](rows []T, less func(a, b T) bool, desc bool) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		c := 0
		switch {
		case less(a, b):
			c = -1
		case less(b, a):
			c = 1
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}
