package types

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// AllowedPageSizes matches the grid layouts of the site (rows of 3 and 4).
var AllowedPageSizes = []int{12, 24, 48, 96}

const defaultPageSize = 12

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PaginatedResponse contains data with pagination metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type PaginationHelper struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPaginationHelper normalises page and pageSize. A size that is not allowed
// snaps down to the nearest allowed one, or the smallest.
func NewPaginationHelper(page, pageSize int) *PaginationHelper {
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	size := AllowedPageSizes[0]
	for _, s := range AllowedPageSizes {
		if s <= pageSize {
			size = s
		}
	}

	return &PaginationHelper{
		Page:     page,
		PageSize: size,
		Offset:   (page - 1) * size,
	}
}

func (p *PaginationHelper) BuildResponse(data interface{}, total int) PaginatedResponse {
	return PaginatedResponse{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      total,
			TotalPages: (total + p.PageSize - 1) / p.PageSize,
		},
	}
}

// ParsePaginationParams extracts page and pageSize from the query string.
func ParsePaginationParams(c *gin.Context) *PaginationHelper {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	return NewPaginationHelper(page, pageSize)
}
