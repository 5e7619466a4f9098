package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxPage keeps Offset far from int overflow.
	MaxPage = 1_000_000
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns page 1 of 20.
func DefaultParams() Params {
	return Params{Page: DefaultPage, PerPage: DefaultPerPage}
}

// Normalize fills defaults for non-positive values and caps Page and
// PerPage.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset is the zero-based index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Window returns the [start,end) bounds of the page within total items.
// Pages past the end yield an empty window.
func (p Params) Window(total int) (start, end int) {
	start = p.Offset()
	if start < 0 || start > total {
		start = total
	}
	end = start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}

// FromRequest reads page and per_page. Missing values take defaults;
// values that are not positive integers are an error.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("per_page must be a positive integer")
		}
		p.PerPage = n
	}
	return p.Normalize(), nil
}

// Paginate returns the page of items selected by p.
func Paginate[T any](items []T, p Params) []T {
	start, end := p.Normalize().Window(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
