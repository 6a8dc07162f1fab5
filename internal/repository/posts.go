package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/postgate/internal/database"
	"github.com/isdelr/postgate/internal/models"
)

// PostField names a column that FindByField may filter on.
type PostField string

const PostSlug PostField = "slug"

const postColumns = "id, user_id, slug, title, text, is_published, created_at"

// PostRepository is the persistence interface for posts.
type PostRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	FindByField(ctx context.Context, field PostField, value any) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	ListPublished(ctx context.Context, page, perPage int) ([]models.Post, error)
	CountPublished(ctx context.Context) (int64, error)
}

type SQLPostRepository struct {
	db *database.DB
}

func NewPostRepository(db *database.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.UserID, &p.Slug, &p.Title, &p.Text, &p.IsPublished, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap(err)
	}
	return p, nil
}

func (r *SQLPostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	query := r.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE id = ?`)
	return scanPost(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLPostRepository) FindByField(ctx context.Context, field PostField, value any) (*models.Post, error) {
	if field != PostSlug {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	query := r.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE ` + string(field) + ` = ?`)
	return scanPost(r.db.QueryRowContext(ctx, query, value))
}

// Insert stores a new post and fills in the generated ID. A slug collision
// surfaces as ErrDuplicate.
func (r *SQLPostRepository) Insert(ctx context.Context, post *models.Post) error {
	query := r.db.Rebind(
		`INSERT INTO posts (user_id, slug, title, text, is_published)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.Slug, post.Title, post.Text, post.IsPublished).Scan(&post.ID)
	if err != nil {
		return wrap(err)
	}
	return nil
}

// Update rewrites the editable fields. The owner never changes.
func (r *SQLPostRepository) Update(ctx context.Context, post *models.Post) error {
	query := r.db.Rebind(`UPDATE posts SET slug = ?, title = ?, text = ?, is_published = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, post.Slug, post.Title, post.Text, post.IsPublished, post.ID)
	if err != nil {
		return wrap(err)
	}
	return expectOne(res)
}

func (r *SQLPostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return wrap(err)
	}
	return expectOne(res)
}

// ListPublished returns one page of published posts ordered by id.
func (r *SQLPostRepository) ListPublished(ctx context.Context, page, perPage int) ([]models.Post, error) {
	query := r.db.Rebind(
		`SELECT ` + postColumns + ` FROM posts
		 WHERE is_published = ?
		 ORDER BY id
		 LIMIT ? OFFSET ?`)

	rows, err := r.db.QueryContext(ctx, query, true, perPage, pageOffset(page, perPage))
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return posts, nil
}

func (r *SQLPostRepository) CountPublished(ctx context.Context) (int64, error) {
	var n int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM posts WHERE is_published = ?`)
	if err := r.db.QueryRowContext(ctx, query, true).Scan(&n); err != nil {
		return 0, wrap(err)
	}
	return n, nil
}
