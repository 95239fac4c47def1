package search

// Paginate returns the page-th window of limit items and the total page count.
// Pages past the end yield an empty slice.
func Paginate[T any](items []T, page int, limit int) ([]T, int) {
	if limit <= 0 {
		return []T{}, 0
	}
	totalPages := (len(items) + limit - 1) / limit

	start := (page - 1) * limit
	if page < 1 || start >= len(items) {
		return []T{}, totalPages
	}
	end := min(start+limit, len(items))

	return items[start:end], totalPages
}
