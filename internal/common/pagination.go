package common

import (
	"net/http"
	"strconv"
	"strings"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and limit query parameters. Missing values fall back to
// the defaults; limit is clamped to maxPerPage when maxPerPage is positive.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int, err error) {
	page = 1
	perPage = defaultPerPage
	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		p, convErr := strconv.Atoi(v)
		if convErr != nil || p < 1 {
			return 0, 0, BadRequest("page", "page must be a positive integer", convErr)
		}
		page = p
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		l, convErr := strconv.Atoi(v)
		if convErr != nil || l < 1 {
			return 0, 0, BadRequest("limit", "limit must be a positive integer", convErr)
		}
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, nil
}

// Offset returns the row offset for a 1-based page.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}
