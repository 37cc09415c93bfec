package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	Offset     int  `json:"offset"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// New normalises the inputs: page is clamped to [1, TotalPages] and an
// empty result still has one page.
func New(total, page, pageSize int) Page {
	if total < 0 {
		total = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Page{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Offset:     (page - 1) * pageSize,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Window returns up to n page numbers centred on the current page.
func (p Page) Window(n int) []int {
	if n <= 0 {
		return []int{}
	}
	if n > p.TotalPages {
		n = p.TotalPages
	}
	start := p.Page - n/2
	if start < 1 {
		start = 1
	}
	if start+n-1 > p.TotalPages {
		start = p.TotalPages - n + 1
	}
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// FromQuery reads ?page= and ?pageSize= with the same defaults as New.
func FromQuery(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
