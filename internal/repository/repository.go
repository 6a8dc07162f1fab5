// Package repository persists users and posts through database/sql.
// Queries are written with ? placeholders and rebound per dialect.
package repository

import (
	"errors"
	"fmt"

	"github.com/isdelr/postgate/internal/database"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidField = errors.New("field cannot be queried")
)

// wrap turns driver errors into the package's sentinels.
func wrap(err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func pageOffset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
