// Package pagination turns an ordered result window into a page with metadata.
package pagination

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	// MaxPerPage is enforced regardless of what the client asks for
	MaxPerPage = 100
	// MaxPage keeps (page-1)*per_page within int
	MaxPage = math.MaxInt / MaxPerPage
)

// Params is a validated page request
type Params struct {
	Page    int
	PerPage int
}

// NewParams clamps page and perPage into their allowed ranges
func NewParams(page, perPage int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// FromQuery reads "page" and "per_page" from query values.
// Missing or non-numeric values fall back to the defaults.
func FromQuery(q url.Values) Params {
	page := DefaultPage
	perPage := DefaultPerPage

	if pageStr := q.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			page = p
		}
	}

	if perPageStr := q.Get("per_page"); perPageStr != "" {
		if pp, err := strconv.Atoi(perPageStr); err == nil {
			perPage = pp
		}
	}

	return NewParams(page, perPage)
}

// Offset returns the number of items before the requested page
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the page size
func (p Params) Limit() int {
	return p.PerPage
}

// Meta is the pagination metadata of a page
type Meta struct {
	Page     int  `json:"page"`
	PerPage  int  `json:"per_page"`
	Total    int  `json:"total"`
	Pages    int  `json:"pages"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	NextPage *int `json:"next_page"`
	PrevPage *int `json:"prev_page"`
}

// NewMeta computes the metadata for p against a collection of total items
func NewMeta(p Params, total int) Meta {
	if total < 0 {
		total = 0
	}
	pages := (total + p.PerPage - 1) / p.PerPage

	meta := Meta{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
	if meta.HasNext {
		next := p.Page + 1
		meta.NextPage = &next
	}
	if meta.HasPrev {
		prev := p.Page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// Page is a window of items with its metadata
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewPage builds a page. Items are never encoded as null.
func NewPage[T any](items []T, p Params, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Pagination: NewMeta(p, total),
	}
}

// Map converts the items of a page, keeping its metadata
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(page.Items))
	for i, item := range page.Items {
		items[i] = fn(item)
	}
	return Page[U]{Items: items, Pagination: page.Pagination}
}
