package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/postgate/internal/database"
	"github.com/isdelr/postgate/internal/models"
)

// UserField names a column that FindByField may filter on.
type UserField string

const (
	UserUsername UserField = "username"
	UserEmail    UserField = "email"
)

const userColumns = "id, username, email, password_hash, is_active, is_admin, created_at"

// UserRepository is the persistence interface for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByField(ctx context.Context, field UserField, value any) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, perPage int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type SQLUserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap(err)
	}
	return u, nil
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLUserRepository) FindByField(ctx context.Context, field UserField, value any) (*models.User, error) {
	switch field {
	case UserUsername, UserEmail:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + string(field) + ` = ?`)
	return scanUser(r.db.QueryRowContext(ctx, query, value))
}

// Insert stores a new user and fills in the generated ID.
func (r *SQLUserRepository) Insert(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(
		`INSERT INTO users (username, email, password_hash, is_active, is_admin)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsAdmin).Scan(&user.ID)
	if err != nil {
		return wrap(err)
	}
	return nil
}

// Update writes the profile fields. Account flags and the password are not touched.
func (r *SQLUserRepository) Update(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`UPDATE users SET username = ?, email = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.ID)
	if err != nil {
		return wrap(err)
	}
	return expectOne(res)
}

func (r *SQLUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return wrap(err)
	}
	return expectOne(res)
}

func (r *SQLUserRepository) List(ctx context.Context, page, perPage int) ([]models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`)

	rows, err := r.db.QueryContext(ctx, query, perPage, pageOffset(page, perPage))
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return users, nil
}

func (r *SQLUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
