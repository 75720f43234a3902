package services

import (
	"context"
	"liveblog/storage"
	"liveblog/storage/models"
)

var versionsFilter = storage.Lookup{"type": models.TypeComposite}

// PostVersions reads the version history kept for composite items.
type PostVersions struct {
	store storage.Storage
}

func NewPostVersions(store storage.Storage) *PostVersions {
	return &PostVersions{store: store}
}

func (s *PostVersions) Get(ctx context.Context, req *storage.Request, lookup storage.Lookup) ([]*models.Version, int64, error) {
	if req == nil {
		req = storage.NewRequest()
	}
	return s.store.FindVersions(ctx, req, versionsFilter, lookup)
}
