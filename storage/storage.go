package storage

import (
	"context"
	"errors"
	"fmt"
	"liveblog/storage/models"
)

var (
	InternalError   = errors.New("storage internal error")
	ClientError     = errors.New("storage client error")
	CollisionError  = fmt.Errorf("%w.collision", ClientError)
	NotFoundError   = fmt.Errorf("%w.not_found", ClientError)
	ValidationError = fmt.Errorf("%w.validation", ClientError)
)

const (
	ArchiveSource         = "archive"
	ArchiveVersionsSource = "archive_versions"
	BlogsSource           = "blogs"
)

type Storage interface {
	InsertItem(ctx context.Context, item *models.Item) error
	FindItem(ctx context.Context, id string) (*models.Item, error)

	InsertBlog(ctx context.Context, blog *models.Blog) error
	FindBlog(ctx context.Context, id string) (*models.Blog, error)

	// FindPosts lists posts matching filter merged with lookup. Posts are
	// returned exactly as stored, associations are never resolved here.
	FindPosts(ctx context.Context, req *Request, filter, lookup Lookup) ([]*models.Post, int64, error)
	FindPost(ctx context.Context, id string) (*models.Post, error)
	// InsertPost stores the post and records its first version.
	InsertPost(ctx context.Context, post *models.Post) error
	// UpdatePost applies updates and records a new version.
	UpdatePost(ctx context.Context, id string, updates *models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)

	FindVersions(ctx context.Context, req *Request, filter, lookup Lookup) ([]*models.Version, int64, error)
}
