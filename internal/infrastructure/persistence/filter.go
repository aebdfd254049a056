package persistence

import (
	"strings"

	"github.com/elimu/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies page/page-size from a shared filter. Unset
// pagination means the query returns everything, which callers rely on for
// sweeps.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyOrdering applies a validated ORDER BY from a shared filter. When no
// column was requested it falls back to the repository's natural ordering;
// otherwise the column is checked against the aggregate's whitelist.
func applyOrdering(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	if strings.TrimSpace(filter.OrderBy) == "" {
		return query.Order(defaultOrder)
	}
	column := ValidateSortField(filter.OrderBy, allowed, "created_at")
	return query.Order(column + " " + ValidateSortOrder(filter.OrderDir))
}
