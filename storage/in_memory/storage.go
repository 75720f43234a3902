package in_memory

import (
	"context"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InMemoryStorage struct {
	mut      sync.RWMutex
	now      func() time.Time
	items    map[string]models.Item
	blogs    map[string]models.Blog
	posts    map[string]*models.Post
	versions []*models.Version
}

func (s *InMemoryStorage) InsertItem(ctx context.Context, item *models.Item) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if _, found := s.items[item.GetId()]; found {
		return fmt.Errorf("item %s already exists: %w", item.GetId(), storage.CollisionError)
	}
	now := s.now()
	item.Created, item.Updated = now, now
	s.items[item.GetId()] = *item
	return nil
}

func (s *InMemoryStorage) FindItem(ctx context.Context, id string) (*models.Item, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	if item, found := s.items[id]; found {
		return &item, nil
	}
	// posts live in the same archive
	if post, found := s.posts[id]; found {
		return post.AsItem(), nil
	}
	return nil, fmt.Errorf("no item with id %v: %w", id, storage.NotFoundError)
}

func (s *InMemoryStorage) InsertBlog(ctx context.Context, blog *models.Blog) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if blog.ID.IsZero() {
		blog.ID = primitive.NewObjectID()
	}
	if _, found := s.blogs[blog.ID.Hex()]; found {
		return fmt.Errorf("blog %s already exists: %w", blog.ID.Hex(), storage.CollisionError)
	}
	now := s.now()
	blog.Created, blog.Updated = now, now
	s.blogs[blog.ID.Hex()] = *blog
	return nil
}

func (s *InMemoryStorage) FindBlog(ctx context.Context, id string) (*models.Blog, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	blog, found := s.blogs[id]
	if !found {
		return nil, fmt.Errorf("no blog with id %v: %w", id, storage.NotFoundError)
	}
	return &blog, nil
}

func (s *InMemoryStorage) FindPosts(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Post, int64, error) {

	query, err := storage.Merge(filter, lookup)
	if err != nil {
		return nil, 0, err
	}

	s.mut.RLock()
	matched := make([]*models.Post, 0)
	for _, post := range s.posts {
		if postMatches(post, query) {
			matched = append(matched, post.Clone())
		}
	}
	s.mut.RUnlock()

	keys := req.SortOr([]storage.SortKey{{Field: "_updated", Descending: true}})
	sort.SliceStable(matched, func(i, j int) bool {
		return lessBy(keys, postSortValue(matched[i]), postSortValue(matched[j]))
	})
	lo, hi := pageBounds(len(matched), req)
	return matched[lo:hi], int64(len(matched)), nil
}

func (s *InMemoryStorage) FindPost(ctx context.Context, id string) (*models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	post, found := s.posts[id]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
	}
	return post.Clone(), nil
}

func (s *InMemoryStorage) InsertPost(ctx context.Context, post *models.Post) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, found := s.posts[post.GetId()]; found {
		return fmt.Errorf("post %s already exists: %w", post.GetId(), storage.CollisionError)
	}
	now := s.now()
	post.Created, post.Updated = now, now
	post.CurrentVersion = 1
	stored := post.Clone()
	stored.Links = nil
	s.posts[post.GetId()] = stored
	s.appendVersion(stored)
	return nil
}

func (s *InMemoryStorage) UpdatePost(ctx context.Context, id string, updates *models.PostUpdate) (*models.Post, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	post, found := s.posts[id]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
	}
	updated := post.Clone()
	updates.Apply(updated)
	updated.Updated = s.now()
	updated.CurrentVersion++
	s.posts[id] = updated
	s.appendVersion(updated)
	return updated.Clone(), nil
}

func (s *InMemoryStorage) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	post, found := s.posts[id]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
	}
	delete(s.posts, id)
	return post, nil
}

func (s *InMemoryStorage) FindVersions(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Version, int64, error) {

	query, err := storage.Merge(filter, lookup)
	if err != nil {
		return nil, 0, err
	}

	s.mut.RLock()
	matched := make([]*models.Version, 0)
	for _, version := range s.versions {
		if versionMatches(version, query) {
			v := *version
			matched = append(matched, &v)
		}
	}
	s.mut.RUnlock()

	keys := req.SortOr([]storage.SortKey{{Field: "_current_version"}})
	sort.SliceStable(matched, func(i, j int) bool {
		return lessBy(keys, versionSortValue(matched[i]), versionSortValue(matched[j]))
	})
	lo, hi := pageBounds(len(matched), req)
	return matched[lo:hi], int64(len(matched)), nil
}

func (s *InMemoryStorage) appendVersion(post *models.Post) {
	version := models.NewVersion(post)
	version.ID = primitive.NewObjectID()
	s.versions = append(s.versions, version)
}

func CreateInMemoryStorage() storage.Storage {
	return CreateInMemoryStorageWithClock(func() time.Time { return time.Now().UTC() })
}

// CreateInMemoryStorageWithClock lets tests control _created/_updated stamps.
func CreateInMemoryStorageWithClock(now func() time.Time) *InMemoryStorage {
	return &InMemoryStorage{
		now:   now,
		items: make(map[string]models.Item),
		blogs: make(map[string]models.Blog),
		posts: make(map[string]*models.Post),
	}
}
