package services

import (
	"context"
	"liveblog/storage"
	"liveblog/storage/models"
)

// postsFilter is the static filter of every posts resource.
var postsFilter = storage.Lookup{"particular_type": models.ParticularTypePost}

// packageService is the read primitive shared by the post resources.
type packageService struct {
	store storage.Storage
}

func (s *packageService) get(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Post, int64, error) {
	if req == nil {
		req = storage.NewRequest()
	}
	return s.store.FindPosts(ctx, req, filter, lookup)
}

func (s *packageService) resolveAll(ctx context.Context, posts []*models.Post) ([]*models.Post, error) {
	resolved := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		doc, err := resolvePost(ctx, post, s.store.FindItem)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, doc)
	}
	return resolved, nil
}
