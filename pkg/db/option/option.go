package option

import (
	"time"

	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement. Options compose left to right.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination turns a cursor page into a keyset predicate plus a limit.
// The limit is page size plus one so callers can detect a next page. Listings
// using this option must order by (created_at, id) ascending.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}

		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err == nil && cursor != nil && cursor.CreatedAt != "" {
				if createdAt, perr := time.Parse(time.RFC3339, cursor.CreatedAt); perr == nil {
					stmt = stmt.Where(
						"(created_at > ?) OR (created_at = ? AND id > ?)",
						createdAt, createdAt, cursor.ID,
					)
				}
			}
		}

		return stmt.Limit(size + 1)
	})
}
