package domain

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams selects one page of a caller's trips. Page starts at 1.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams parses optional page/limit query values. Missing or
// non-positive values fall back to page 1 and 20 per page; the limit is
// clamped to 100.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: defaultPageSize}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, maxPageSize)
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
