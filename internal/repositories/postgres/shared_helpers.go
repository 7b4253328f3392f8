package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/repositories"
)

// handleDBError is a package-level helper translating gorm errors into the
// repository error taxonomy. The postgres driver is opened with
// TranslateError, so unique violations surface as gorm.ErrDuplicatedKey.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NewRepositoryError(operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.NewRepositoryError(operation, repositories.ErrDuplicateKey)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSorting applies pagination and sorting with a sort-column
// whitelist so user input never reaches the ORDER BY clause directly.
func applyPaginationAndSorting(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
		"status":     "status",
		"rating":     "rating",
		"priority":   "priority",
		"id":         "id",
	}

	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
