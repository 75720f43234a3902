package services

import (
	"context"
	"errors"
	"liveblog/storage"
	"liveblog/storage/models"
)

// LookupFunc fetches an archive item by id without any access scoping.
type LookupFunc func(ctx context.Context, id string) (*models.Item, error)

// ResolvePrimaryAssociation returns a copy of assocs where the first
// association with a residRef carries the referenced item. Later references
// are left alone. A reference to a missing item resolves to an empty
// resolution; any other lookup error is returned.
func ResolvePrimaryAssociation(ctx context.Context, assocs []models.Association, lookup LookupFunc) ([]models.Association, error) {
	resolved := append([]models.Association(nil), assocs...)
	for i := range resolved {
		if resolved[i].ResidRef == "" {
			continue
		}
		item, err := lookup(ctx, resolved[i].ResidRef)
		if err != nil {
			if !errors.Is(err, storage.NotFoundError) {
				return nil, err
			}
			item = nil
		}
		resolved[i].Item = &models.Resolution{Item: item}
		break
	}
	return resolved, nil
}

func resolvePost(ctx context.Context, post *models.Post, lookup LookupFunc) (*models.Post, error) {
	assocs := post.Associations()
	if len(assocs) == 0 {
		return post, nil
	}
	resolved, err := ResolvePrimaryAssociation(ctx, assocs, lookup)
	if err != nil {
		return nil, err
	}
	out := *post
	out.Groups = post.WithAssociations(resolved)
	return &out, nil
}
