package summary

// PageSize is the number of table rows per page.
const PageSize = 10

// Page is one slice of a longer list.
type Page[T any] struct {
	Items []T
	Page  int
	Pages int
	Total int
}

// HasPrev reports a page before this one.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports a page after this one.
func (p Page[T]) HasNext() bool { return p.Page < p.Pages }

// Paginate returns page (1-based) of items. page is clamped to the valid
// range and size <= 0 means PageSize. An empty list has one empty page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return Page[T]{Items: items[start:end], Page: page, Pages: pages, Total: len(items)}
}
