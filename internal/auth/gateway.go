package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/postgate/internal/repository"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID int64
	Email  string
}

// OwnerFunc resolves the owner of the resource a request targets. A nil id
// means the resource has no owner.
type OwnerFunc func(ctx context.Context) (*int64, error)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// AccountChecker enforces account state.
type AccountChecker interface {
	Check(ctx context.Context, userID int64, requireAdmin bool) bool
}

// Gateway turns an Authorization header and an Operation into a verdict.
type Gateway struct {
	tokens   TokenValidator
	accounts AccountChecker
}

func NewGateway(tokens TokenValidator, accounts AccountChecker) *Gateway {
	return &Gateway{tokens: tokens, accounts: accounts}
}

// Authorize returns the caller when op is allowed. Otherwise the error wraps
// ErrUnauthenticated or ErrForbidden, or is repository.ErrNotFound when the
// owner lookup found no resource. Public operations return a zero Principal.
func (g *Gateway) Authorize(ctx context.Context, header string, op Operation, owner OwnerFunc) (Principal, error) {
	if op.Public {
		return Principal{}, nil
	}

	token, ok := BearerToken(header)
	if !ok {
		return Principal{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if !g.accounts.Check(ctx, claims.UserID, op.RequiresAdmin) {
		return Principal{}, fmt.Errorf("%w: account not allowed", ErrForbidden)
	}

	if op.CheckOwner {
		if owner == nil {
			return Principal{}, fmt.Errorf("%w: no owner resolver", ErrForbidden)
		}

		ownerID, err := owner(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Principal{}, err
			}
			log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Owner lookup failed")
			return Principal{}, fmt.Errorf("%w: owner lookup failed", ErrForbidden)
		}
		if ownerID == nil || *ownerID != claims.UserID {
			return Principal{}, fmt.Errorf("%w: not the owner", ErrForbidden)
		}
	}

	return Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
