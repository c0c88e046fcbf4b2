package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse is returned when a delete is blocked by dependent rows.
	ErrInUse = errors.New("record still referenced")
	// ErrExportTooLarge is returned when an export would exceed MaxExportRows.
	ErrExportTooLarge = errors.New("export exceeds row limit")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MaxExportRows bounds a single export; larger result sets must be narrowed.
const MaxExportRows = 5000

// queryArgs accumulates positional arguments and hands out $n placeholders.
type queryArgs []interface{}

func (a *queryArgs) bind(v interface{}) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func where(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func sortDirection(raw, fallback string) string {
	switch strings.ToUpper(raw) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return fallback
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
