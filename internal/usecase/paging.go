package usecase

// ページ番号とサイズを正規化してoffsetを返す
func normalizePage(page, size, def, max int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size, (page - 1) * size
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPagination(page, size int, total int64) Pagination {
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return Pagination{Page: page, PageSize: size, Total: total, TotalPages: pages}
}
