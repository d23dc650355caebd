// Package page provides offset-based pagination shared by task and event
// listings: request normalization before the repository count+fetch, and the
// paginated result envelope returned to the transport layer.
package page

// Paging defaults and bounds. MaxSize caps page_size regardless of what the
// caller requests.
const (
	DefaultSize = 10
	MaxSize     = 100
)

// Request holds the caller's paging parameters before normalization.
type Request struct {
	Page int
	Size int
}

// Normalize clamps the request to valid bounds: page defaults to 1 and is
// never below 1; size defaults to DefaultSize and is clamped to [1, maxSize].
// A maxSize <= 0 falls back to MaxSize.
func (r Request) Normalize(maxSize int) Request {
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size < 1 {
		r.Size = DefaultSize
	}
	if r.Size > maxSize {
		r.Size = maxSize
	}
	return r
}

// Offset returns the row offset for the normalized request.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Size
}

// Result is a single page of data plus paging metadata. Total counts all rows
// matching the filter, ignoring paging. A request beyond the last page yields
// empty Data with Total and TotalPages intact.
type Result[T any] struct {
	Data       []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewResult assembles a Result from a fetched page and the filter-wide total.
// TotalPages is ceil(total/size). Data is never nil.
func NewResult[T any](data []T, total int64, r Request) Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := int((total + int64(r.Size) - 1) / int64(r.Size))
	return Result[T]{
		Data:       data,
		Total:      total,
		Page:       r.Page,
		PageSize:   r.Size,
		TotalPages: pages,
	}
}
