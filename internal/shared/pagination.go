package shared

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Default page size for listings.
const DefaultPageSize = 10

// NewPagination computes pagination metadata, normalising page and limit.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice range of the page within total items.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.Limit
	if start > p.Total {
		start = p.Total
	}
	end = start + p.Limit
	if end > p.Total {
		end = p.Total
	}
	return start, end
}
