package services

import (
	"context"
	"errors"
	"fmt"
	"liveblog/notify"
	"liveblog/storage"
	"liveblog/storage/models"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const postsTopic = "posts"

type Option func(*Posts)

func WithClock(now func() time.Time) Option {
	return func(s *Posts) {
		s.now = now
	}
}

// Posts is the catalog of all posts across blogs.
type Posts struct {
	packageService
	notifications chan<- notify.Notification
	now           func() time.Time
}

func NewPosts(store storage.Storage, notifications chan<- notify.Notification, opts ...Option) *Posts {
	s := &Posts{
		packageService: packageService{store: store},
		notifications:  notifications,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Posts) Get(ctx context.Context, req *storage.Request, lookup storage.Lookup) ([]*models.Post, int64, error) {
	posts, total, err := s.get(ctx, req, postsFilter, lookup)
	if err != nil {
		return nil, 0, err
	}
	posts, err = s.resolveAll(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// FindOne reads a single post, scoped and resolved the way Get is.
func (s *Posts) FindOne(ctx context.Context, id string) (*models.Post, error) {
	original, err := s.original(ctx, id)
	if err != nil {
		return nil, err
	}
	return resolvePost(ctx, original, s.store.FindItem)
}

func (s *Posts) Create(ctx context.Context, rc RequestContext, docs []*models.Post) error {
	for _, doc := range docs {
		if err := s.validateNew(ctx, doc); err != nil {
			return err
		}
	}
	s.OnCreate(rc, docs)
	// not atomic: documents inserted before a failure stay and are announced
	for i, doc := range docs {
		if err := s.store.InsertPost(ctx, doc); err != nil {
			if i > 0 {
				s.OnCreated(docs[:i])
			}
			return err
		}
	}
	s.OnCreated(docs)
	return nil
}

func (s *Posts) Update(ctx context.Context, rc RequestContext, id string, updates *models.PostUpdate) (*models.Post, error) {
	original, err := s.original(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.validateUpdate(ctx, updates); err != nil {
		return nil, err
	}
	s.OnUpdate(rc, updates, original)
	updated, err := s.store.UpdatePost(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.OnUpdated(updates, original)
	return resolvePost(ctx, updated, s.store.FindItem)
}

func (s *Posts) Delete(ctx context.Context, rc RequestContext, id string) error {
	if _, err := s.original(ctx, id); err != nil {
		return err
	}
	deleted, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return err
	}
	log.INFO.Printf("Post %s deleted by %q", deleted.GetId(), rc.UserID())
	s.OnDeleted(deleted)
	return nil
}

func (s *Posts) OnCreate(rc RequestContext, docs []*models.Post) {
	now := s.now()
	for _, doc := range docs {
		models.StampCreationFields(&doc.Package, now)
		doc.OriginalCreator = rc.UserID()
	}
}

func (s *Posts) OnCreated(docs []*models.Post) {
	notify.Emit(s.notifications, notify.New(postsTopic, map[string]int{"created": 1}))
}

func (s *Posts) OnUpdate(rc RequestContext, updates *models.PostUpdate, original *models.Post) {
	now := s.now()
	if now.Before(original.VersionCreated) {
		now = original.VersionCreated
	}
	creator := rc.UserID()
	updates.VersionCreated = &now
	updates.VersionCreator = &creator
}

func (s *Posts) OnUpdated(updates *models.PostUpdate, original *models.Post) {
	notify.Emit(s.notifications, notify.New(postsTopic, map[string]int{"updated": 1}))
}

func (s *Posts) OnDeleted(doc *models.Post) {
	notify.Emit(s.notifications, notify.New(postsTopic, map[string]int{"deleted": 1}))
}

// original loads the stored post behind id, scoped to the posts filter.
func (s *Posts) original(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.FindPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.ParticularType != postsFilter["particular_type"] {
		return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
	}
	return post, nil
}

func (s *Posts) validateNew(ctx context.Context, doc *models.Post) error {
	doc.Type = models.TypeComposite
	if doc.ParticularType == "" {
		doc.ParticularType = models.ParticularTypePost
	}
	if !models.IsParticularType(doc.ParticularType) {
		return fmt.Errorf("particular_type: unallowed value %q: %w", doc.ParticularType, storage.ValidationError)
	}
	if doc.Blog.IsZero() {
		return fmt.Errorf("blog: required field: %w", storage.ValidationError)
	}
	return s.validateBlog(ctx, doc.Blog)
}

func (s *Posts) validateUpdate(ctx context.Context, updates *models.PostUpdate) error {
	if updates.ParticularType != nil && !models.IsParticularType(*updates.ParticularType) {
		return fmt.Errorf("particular_type: unallowed value %q: %w", *updates.ParticularType, storage.ValidationError)
	}
	if updates.Blog != nil {
		if updates.Blog.IsZero() {
			return fmt.Errorf("blog: null value not allowed: %w", storage.ValidationError)
		}
		return s.validateBlog(ctx, *updates.Blog)
	}
	return nil
}

func (s *Posts) validateBlog(ctx context.Context, blog primitive.ObjectID) error {
	_, err := s.store.FindBlog(ctx, blog.Hex())
	if errors.Is(err, storage.NotFoundError) {
		return fmt.Errorf("blog: value %s must exist in resource blogs: %w", blog.Hex(), storage.ValidationError)
	}
	return err
}
