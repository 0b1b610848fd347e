package pipeline

import "example.com/litterbox/internal/domain"

// DefaultPageSize matches the record list rendered by the dashboard.
const DefaultPageSize = 10

// Page is a read-only fixed-size view over the current record set.
type Page struct {
	Index      int                  `json:"index"`
	Size       int                  `json:"size"`
	TotalPages int                  `json:"total_pages"`
	Items      []domain.UsageRecord `json:"items"`
}

// Paginator slices an ordered record set into fixed-size pages. It owns only
// the current page index; the records themselves live in the RecordStore.
type Paginator struct {
	size  int
	index int
}

// NewPaginator builds a Paginator with the given page size.
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Paginator{size: size}
}

// TotalPages returns ceil(n/size), with 0 pages for an empty set.
func (p *Paginator) TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.size - 1) / p.size
}

// Index returns the current page index.
func (p *Paginator) Index() int {
	return p.index
}

// Reset moves back to the first page. Called whenever the underlying record
// set is replaced.
func (p *Paginator) Reset() {
	p.index = 0
}

// GoTo clamps the requested index to [0, totalPages-1] for a set of n
// records. Requesting the current page is a no-op, not an error.
func (p *Paginator) GoTo(index, n int) {
	last := p.TotalPages(n) - 1
	if last < 0 {
		last = 0
	}
	if index < 0 {
		index = 0
	}
	if index > last {
		index = last
	}
	p.index = index
}

// Slice returns the current page over records.
func (p *Paginator) Slice(records []domain.UsageRecord) Page {
	total := p.TotalPages(len(records))
	start := p.index * p.size
	if start > len(records) {
		start = len(records)
	}
	end := start + p.size
	if end > len(records) {
		end = len(records)
	}
	return Page{
		Index:      p.index,
		Size:       p.size,
		TotalPages: total,
		Items:      records[start:end],
	}
}
