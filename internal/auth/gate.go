package auth

import (
	"context"
	"errors"

	"github.com/isdelr/postgate/internal/models"
	"github.com/isdelr/postgate/internal/repository"
	"github.com/rs/zerolog/log"
)

// UserFinder loads a user by id.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AccountGate decides whether an account may act at all.
type AccountGate struct {
	users UserFinder
}

func NewAccountGate(users UserFinder) *AccountGate {
	return &AccountGate{users: users}
}

// Check reports whether the user exists, is active and, when requireAdmin is
// set, is an admin. Lookup failures count as a denial.
func (g *AccountGate) Check(ctx context.Context, userID int64, requireAdmin bool) bool {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Int64("user_id", userID).Msg("Account lookup failed")
		}
		return false
	}

	if !user.IsActive {
		return false
	}
	if requireAdmin && !user.IsAdmin {
		return false
	}
	return true
}
