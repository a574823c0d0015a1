// Package service holds what the domain services share.
package service

// Paging bounds
const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 1_000_000
)

// Paging is a page request. Zero values mean the defaults.
type Paging struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps the page to [1, MaxPage] and the limit to [1, MaxLimit], defaulting to DefaultLimit.
func (p Paging) Normalize() Paging {
	switch {
	case p.Page < 1:
		p.Page = 1
	case p.Page > MaxPage:
		p.Page = MaxPage
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows to skip. Call on a normalized Paging.
func (p Paging) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPage wraps items fetched with p out of total matching rows.
func NewPage[T any](items []T, total int64, p Paging) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}
