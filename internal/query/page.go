package query

import (
	"net/url"
	"strconv"

	"catalog-service/internal/apperror"
)

const (
	DefaultPageSize  = 20
	MaxPageSize      = 100
	ConvenienceLimit = 8
)

// PageRequest selects one page of a listing
type PageRequest struct {
	Page int
	Size int
}

// ParsePageRequest reads page and page_size. Sizes above MaxPageSize are capped.
func ParsePageRequest(values url.Values) (PageRequest, error) {
	req := PageRequest{Page: 1, Size: DefaultPageSize}
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return PageRequest{}, apperror.BadRequest("page", "page must be a positive integer")
		}
		req.Page = n
	}
	if raw := values.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return PageRequest{}, apperror.BadRequest("page_size", "page_size must be a positive integer")
		}
		req.Size = min(n, MaxPageSize)
	}
	return req, nil
}

// Page is the paginated listing envelope
type Page[T any] struct {
	Count      int `json:"count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Results    []T `json:"results"`
}

// Paginate cuts items down to the requested page. Page 1 always exists; any other page past
// the end is not found.
func Paginate[T any](items []T, req PageRequest) (Page[T], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Size < 1 {
		req.Size = DefaultPageSize
	}

	total := (len(items) + req.Size - 1) / req.Size
	if req.Page > 1 && req.Page > total {
		return Page[T]{}, apperror.NotFound("page %d does not exist", req.Page)
	}

	start := (req.Page - 1) * req.Size
	end := min(start+req.Size, len(items))
	results := make([]T, 0, end-start)
	results = append(results, items[start:end]...)

	return Page[T]{
		Count:      len(items),
		Page:       req.Page,
		PageSize:   req.Size,
		TotalPages: total,
		Results:    results,
	}, nil
}

// MapPage converts the results of a page, keeping its counters
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Count:      p.Count,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Results:    make([]U, 0, len(p.Results)),
	}
	for _, item := range p.Results {
		out.Results = append(out.Results, fn(item))
	}
	return out
}
