package core

import "fmt"

// Pagination describes one page of a list of `Total` items.
type Pagination struct {
	Number     int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	From       int    `json:"from"` // 1-based index of the first item on the page, 0 when empty
	To         int    `json:"to"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	Info       string `json:"info"`
	PageInfo   string `json:"page_info"`
}

// Paginate clamps `page` to [1, ceil(total/size)] and computes the bounds of that page.
// An empty list still has one (empty) page.
func Paginate(total, page, size int) Pagination {
	if size < 1 {
		size = 1
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	} else if page > pages {
		page = pages
	}

	p := Pagination{
		Number:     page,
		TotalPages: pages,
		PageSize:   size,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
	if total > 0 {
		p.From = (page-1)*size + 1
		p.To = p.From + size - 1
		if p.To > total {
			p.To = total
		}
	}
	p.Info = fmt.Sprintf("Showing %d-%d of %d entries", p.From, p.To, total)
	p.PageInfo = fmt.Sprintf("Page %d of %d", page, pages)
	return p
}

// Bounds returns the slice bounds [lo, hi) of the page.
func (p Pagination) Bounds() (int, int) {
	if p.Total == 0 {
		return 0, 0
	}
	return p.From - 1, p.To
}
