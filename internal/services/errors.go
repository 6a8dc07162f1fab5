package services

import (
	"errors"
	"math"

	"github.com/isdelr/postgate/internal/repository"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username or email already taken")
	ErrDuplicateSlug      = errors.New("slug already exists")

	// ErrNotFound is returned when the referenced user or post does not exist.
	ErrNotFound = repository.ErrNotFound
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (page-1)*perPage within a 32-bit OFFSET.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// clampPage applies pagination defaults and bounds.
func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, perPage
}

func numPages(total int64, perPage int) int {
	return int((total + int64(perPage) - 1) / int64(perPage))
}
