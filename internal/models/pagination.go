package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is returned alongside every paged list.
type Pagination struct {
	Size  int   `json:"size"`
	Page  int   `json:"page"`
	Count int64 `json:"count"`
	Pages int   `json:"pages"`
}

// NewPagination clamps page/size and derives the page count from total.
func NewPagination(page, size int, total int64) Pagination {
	page, size = Normalize(page, size)
	pages := int((total + int64(size) - 1) / int64(size))
	return Pagination{Size: size, Page: page, Count: total, Pages: pages}
}

// Normalize applies defaults: page starts at 1, size falls back to
// DefaultPageSize and is capped at MaxPageSize.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset is the row offset of page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.Pages }

func (p Pagination) PrevPage() int { return p.Page - 1 }

func (p Pagination) NextPage() int { return p.Page + 1 }
