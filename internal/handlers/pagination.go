package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/covidboard/internal/stats"
)

// PaginationParams holds pagination and sorting query parameters
type PaginationParams struct {
	Page   int          `json:"page"`    // 1-indexed page number (default: 1)
	Per    int          `json:"per"`     // Items per page (default: 25, max: 250)
	Offset int          `json:"-"`       // Calculated slice offset
	SortBy stats.Metric `json:"sort_by"` // Metric to rank by (default: cases)
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Page       int  `json:"page"`
	Per        int  `json:"per"`
	Total      int  `json:"total"`       // Total items across all pages
	TotalPages int  `json:"total_pages"` // Calculated total pages
	HasMore    bool `json:"has_more"`    // Whether more pages exist
}

// PaginatedResponse wraps any list response with pagination metadata
type PaginatedResponse struct {
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// ParsePaginationParams extracts and validates pagination from request
func ParsePaginationParams(c fiber.Ctx) PaginationParams {
	page := max(fiber.Query[int](c, "page", 1), 1)
	per := min(max(fiber.Query[int](c, "per", 25), 1), 250)

	sortBy, err := stats.ParseMetric(c.Query("sort_by", string(stats.MetricCases)))
	if err != nil {
		sortBy = stats.MetricCases
	}

	return PaginationParams{
		Page:   page,
		Per:    per,
		Offset: (page - 1) * per,
		SortBy: sortBy,
	}
}

// BuildPaginationMeta creates pagination metadata for a list of total items
func BuildPaginationMeta(params PaginationParams, total int) PaginationMeta {
	var totalPages int
	if total > 0 && params.Per > 0 {
		totalPages = (total + params.Per - 1) / params.Per
	}

	return PaginationMeta{
		Page:       params.Page,
		Per:        params.Per,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    params.Page < totalPages,
	}
}

// pageOf slices items to the requested page; out-of-range pages are empty.
func pageOf[T any](items []T, params PaginationParams) []T {
	if params.Offset >= len(items) {
		return []T{}
	}
	end := min(params.Offset+params.Per, len(items))
	return items[params.Offset:end]
}
