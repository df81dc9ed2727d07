package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Dashboard page sizes offered to HR staff.
var AllowedPageSizes = []int{10, 25, 50}

const DefaultPageSize = 10

// NormalizeLimit snaps a requested page size onto the allowed set,
// falling back to DefaultPageSize.
func NormalizeLimit(limit int) int {
	for _, allowed := range AllowedPageSizes {
		if limit == allowed {
			return limit
		}
	}
	return DefaultPageSize
}

// ParseLimitParam extracts the "limit" query parameter
func ParseLimitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		return DefaultPageSize
	}
	return NormalizeLimit(limit)
}
