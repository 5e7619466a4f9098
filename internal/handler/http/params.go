package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/pagination"
)

// paramError names the query parameter that failed to parse.
type paramError struct {
	param   string
	message string
}

func (e *paramError) Error() string { return e.param + ": " + e.message }

func invalidParam(param, format string, args ...any) *paramError {
	return &paramError{param: param, message: fmt.Sprintf(format, args...)}
}

// parseSearchQuery reads the catalog listing query string. Absent
// parameters keep their defaults; malformed ones are rejected.
func parseSearchQuery(r *http.Request) (*domain.SearchQuery, *paramError) {
	q := r.URL.Query()
	query := &domain.SearchQuery{Filters: domain.Defaults()}
	f := &query.Filters

	if v := q.Get("kind"); v != "" {
		k := domain.Kind(v)
		if !k.Valid() {
			return nil, invalidParam("kind", "kind must be one of: vendor, product")
		}
		query.Kind = k
	}

	f.Query = strings.TrimSpace(q.Get("q"))
	if len(f.Query) > 200 {
		return nil, invalidParam("q", "q must be at most 200 characters")
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		f.Category = v
	}
	if v := strings.TrimSpace(q.Get("location")); v != "" {
		f.Location = v
	}

	var perr *paramError
	if f.MinPrice, perr = priceParam(q.Get("min_price"), "min_price"); perr != nil {
		return nil, perr
	}
	if f.MaxPrice, perr = priceParam(q.Get("max_price"), "max_price"); perr != nil {
		return nil, perr
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, invalidParam("min_price", "min_price must not exceed max_price")
	}

	if v := q.Get("rating"); v != "" {
		if _, _, err := domain.ParseRatingFloor(v); err != nil {
			return nil, invalidParam("rating", "rating must be 'all' or a threshold such as '4+'")
		}
		f.MinRating = v
	}
	if v := q.Get("sort"); v != "" {
		if !domain.IsValidSort(v) {
			return nil, invalidParam("sort", "sort must be one of: %s", strings.Join(domain.ValidSortOptions(), ", "))
		}
		f.Sort = v
	}
	if f.VerifiedOnly, perr = boolParam(q.Get("verified"), "verified"); perr != nil {
		return nil, perr
	}
	if f.InStockOnly, perr = boolParam(q.Get("in_stock"), "in_stock"); perr != nil {
		return nil, perr
	}

	p, err := pagination.FromRequest(r)
	if err != nil {
		param := "page"
		if strings.HasPrefix(err.Error(), "per_page") {
			param = "per_page"
		}
		return nil, invalidParam(param, "%s", err.Error())
	}
	query.Page, query.PerPage = p.Page, p.PerPage
	return query, nil
}

func priceParam(v, name string) (*int64, *paramError) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, invalidParam(name, "%s must be a whole number of naira", name)
	}
	if n < 0 {
		return nil, invalidParam(name, "%s must not be negative", name)
	}
	return &n, nil
}

func boolParam(v, name string) (bool, *paramError) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalidParam(name, "%s must be true or false", name)
	}
	return b, nil
}

func intParam(v, name string, def int) (int, *paramError) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, invalidParam(name, "%s must be a positive integer", name)
	}
	return n, nil
}
