package services

import (
	"context"
	"errors"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLookup struct {
	items map[string]*models.Item
	calls []string
	err   error
}

func (l *recordingLookup) find(ctx context.Context, id string) (*models.Item, error) {
	l.calls = append(l.calls, id)
	if l.err != nil {
		return nil, l.err
	}
	item, found := l.items[id]
	if !found {
		return nil, fmt.Errorf("no item with id %v: %w", id, storage.NotFoundError)
	}
	return item, nil
}

func TestResolvePrimaryAssociationPicksFirstValid(t *testing.T) {
	lookup := &recordingLookup{items: map[string]*models.Item{
		"A7": {Headline: "a7"},
		"B2": {Headline: "b2"},
	}}
	assocs := []models.Association{{ResidRef: ""}, {ResidRef: "A7"}, {ResidRef: "B2"}}

	resolved, err := ResolvePrimaryAssociation(context.Background(), assocs, lookup.find)
	require.NoError(t, err)

	require.Len(t, resolved, 3)
	assert.Nil(t, resolved[0].Item)
	require.NotNil(t, resolved[1].Item)
	assert.Equal(t, "a7", resolved[1].Item.Item.Headline)
	assert.Nil(t, resolved[2].Item)
	assert.Equal(t, []string{"A7"}, lookup.calls)

	// the input is left untouched
	assert.Nil(t, assocs[1].Item)
}

func TestResolvePrimaryAssociationWithoutValidRefs(t *testing.T) {
	cases := map[string][]models.Association{
		"no associations": nil,
		"only empty refs": {{ResidRef: ""}, {Type: "text"}},
	}
	for name, assocs := range cases {
		t.Run(name, func(t *testing.T) {
			lookup := &recordingLookup{}

			resolved, err := ResolvePrimaryAssociation(context.Background(), assocs, lookup.find)
			require.NoError(t, err)

			assert.Len(t, resolved, len(assocs))
			for _, assoc := range resolved {
				assert.Nil(t, assoc.Item)
			}
			assert.Empty(t, lookup.calls)
		})
	}
}

func TestResolvePrimaryAssociationMissingItem(t *testing.T) {
	lookup := &recordingLookup{items: map[string]*models.Item{}}
	assocs := []models.Association{{ResidRef: "gone"}, {ResidRef: "B2"}}

	resolved, err := ResolvePrimaryAssociation(context.Background(), assocs, lookup.find)
	require.NoError(t, err)

	require.NotNil(t, resolved[0].Item)
	assert.Nil(t, resolved[0].Item.Item)
	assert.Nil(t, resolved[1].Item)
	assert.Equal(t, []string{"gone"}, lookup.calls)
}

func TestResolvePrimaryAssociationStoreFailure(t *testing.T) {
	failure := fmt.Errorf("connection reset: %w", storage.InternalError)
	lookup := &recordingLookup{err: failure}

	_, err := ResolvePrimaryAssociation(context.Background(), []models.Association{{ResidRef: "A7"}}, lookup.find)
	assert.True(t, errors.Is(err, storage.InternalError))
}

func TestResolvePostAcrossGroups(t *testing.T) {
	lookup := &recordingLookup{items: map[string]*models.Item{"A7": {Headline: "a7"}}}
	post := &models.Post{Package: models.Package{Groups: []models.Group{
		{ID: "root", Refs: []models.Association{{ResidRef: ""}}},
		{ID: "main", Refs: []models.Association{{ResidRef: "A7"}, {ResidRef: "B2"}}},
	}}}

	resolved, err := resolvePost(context.Background(), post, lookup.find)
	require.NoError(t, err)

	assert.Nil(t, resolved.Groups[0].Refs[0].Item)
	require.NotNil(t, resolved.Groups[1].Refs[0].Item)
	assert.Equal(t, "a7", resolved.Groups[1].Refs[0].Item.Item.Headline)
	assert.Nil(t, resolved.Groups[1].Refs[1].Item)
	assert.Nil(t, post.Groups[1].Refs[0].Item)
}
