package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/postgate/internal/models"
	"github.com/isdelr/postgate/internal/repository"
	"github.com/isdelr/postgate/internal/slug"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	ListPublished(ctx context.Context, page, perPage int) (*PostPage, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, ownerID int64, input PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, input PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	PostOwner(ctx context.Context, id int64) (*int64, error)
}

// PostInput carries the writable fields of a post.
type PostInput struct {
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Slug        *string `json:"slug"`
	IsPublished bool    `json:"is_published"`
}

func (in PostInput) explicitSlug() string {
	if in.Slug == nil {
		return ""
	}
	return *in.Slug
}

// PostPage is one page of published posts.
type PostPage struct {
	Posts    []models.Post `json:"posts"`
	Page     int           `json:"page"`
	NumPages int           `json:"num_pages"`
}

// PostService provides business logic for posts.
type PostService struct {
	posts         repository.PostRepository
	slugMaxLength int
}

// NewPostService creates a new PostService. slugMaxLength bounds slugs
// derived from titles and slugs given on update; zero leaves them unbounded.
func NewPostService(posts repository.PostRepository, slugMaxLength int) *PostService {
	return &PostService{posts: posts, slugMaxLength: slugMaxLength}
}

// ListPublished returns one page of published posts ordered by id.
func (s *PostService) ListPublished(ctx context.Context, page, perPage int) (*PostPage, error) {
	page, perPage = clampPage(page, perPage)

	total, err := s.posts.CountPublished(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPublished(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, NumPages: numPages(total, perPage)}, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.posts.FindByField(ctx, repository.PostSlug, slug)
}

// PostOwner returns the owner id of a post, nil when the post has none.
func (s *PostService) PostOwner(ctx context.Context, id int64) (*int64, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return post.UserID, nil
}

// CreatePost stores a post owned by ownerID. A title-derived slug is bounded
// by the configured length; an explicit slug is only normalized.
func (s *PostService) CreatePost(ctx context.Context, ownerID int64, input PostInput) (*models.Post, error) {
	if err := validatePost(input); err != nil {
		return nil, err
	}

	postSlug := slug.Normalize(input.explicitSlug(), 0)
	if postSlug == "" {
		postSlug = slug.Generate(input.Title, "", s.slugMaxLength)
	}
	if postSlug == "" {
		return nil, fmt.Errorf("%w: title does not yield a slug", ErrValidation)
	}

	if err := s.ensureSlugFree(ctx, 0, postSlug); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:      &ownerID,
		Slug:        postSlug,
		Title:       input.Title,
		Text:        input.Text,
		IsPublished: input.IsPublished,
	}
	if err := s.posts.Insert(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, postSlug)
		}
		return nil, err
	}

	return s.posts.FindByID(ctx, post.ID)
}

// UpdatePost replaces the editable fields of a post and regenerates its slug.
func (s *PostService) UpdatePost(ctx context.Context, id int64, input PostInput) (*models.Post, error) {
	if err := validatePost(input); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	postSlug := slug.Generate(input.Title, input.explicitSlug(), s.slugMaxLength)
	if postSlug == "" {
		return nil, fmt.Errorf("%w: title does not yield a slug", ErrValidation)
	}
	if err := s.ensureSlugFree(ctx, id, postSlug); err != nil {
		return nil, err
	}

	post.Slug = postSlug
	post.Title = input.Title
	post.Text = input.Text
	post.IsPublished = input.IsPublished

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, postSlug)
		}
		return nil, err
	}
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	return s.posts.Delete(ctx, id)
}

// ensureSlugFree is a fast path only; the unique index decides races.
func (s *PostService) ensureSlugFree(ctx context.Context, selfID int64, postSlug string) error {
	existing, err := s.posts.FindByField(ctx, repository.PostSlug, postSlug)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, postSlug)
	}
	return nil
}

func validatePost(input PostInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}
