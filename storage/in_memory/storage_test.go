package in_memory

import (
	"context"
	"errors"
	"liveblog/storage"
	"liveblog/storage/models"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ctx = context.Background()

func newStorage() *InMemoryStorage {
	clock := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	return CreateInMemoryStorageWithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
}

func newPost(blog primitive.ObjectID, particularType string) *models.Post {
	post := &models.Post{Blog: blog, ParticularType: particularType}
	post.Type = models.TypeComposite
	return post
}

func TestFindItemCoversPosts(t *testing.T) {
	s := newStorage()
	item := &models.Item{Type: "text", Headline: "hello"}
	require.NoError(t, s.InsertItem(ctx, item))
	post := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	post.Headline = "a post"
	require.NoError(t, s.InsertPost(ctx, post))

	found, err := s.FindItem(ctx, item.GetId())
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Headline)

	found, err = s.FindItem(ctx, post.GetId())
	require.NoError(t, err)
	assert.Equal(t, "a post", found.Headline)
	assert.Equal(t, models.TypeComposite, found.Type)

	_, err = s.FindItem(ctx, primitive.NewObjectID().Hex())
	assert.True(t, errors.Is(err, storage.NotFoundError))
}

func TestInsertPostRejectsDuplicates(t *testing.T) {
	s := newStorage()
	post := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	require.NoError(t, s.InsertPost(ctx, post))

	again := newPost(post.Blog, models.ParticularTypePost)
	again.ID = post.ID
	err := s.InsertPost(ctx, again)
	assert.True(t, errors.Is(err, storage.CollisionError))
}

func TestFindPostsFiltersAndSorts(t *testing.T) {
	s := newStorage()
	blog := primitive.NewObjectID()
	first := newPost(blog, models.ParticularTypePost)
	second := newPost(blog, models.ParticularTypePost)
	nested := newPost(blog, models.ParticularTypeItem)
	elsewhere := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	for _, post := range []*models.Post{first, second, nested, elsewhere} {
		require.NoError(t, s.InsertPost(ctx, post))
	}

	posts, total, err := s.FindPosts(ctx, storage.NewRequest(),
		storage.Lookup{"particular_type": models.ParticularTypePost}, storage.Lookup{"blog": blog})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	req := storage.NewRequest()
	req.Sort = []storage.SortKey{{Field: "_created"}}
	posts, _, err = s.FindPosts(ctx, req, nil, storage.Lookup{"blog": blog.Hex()})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, first.ID, posts[0].ID)
}

func TestFilterWinsOverLookup(t *testing.T) {
	s := newStorage()
	nested := newPost(primitive.NewObjectID(), models.ParticularTypeItem)
	require.NoError(t, s.InsertPost(ctx, nested))

	posts, _, err := s.FindPosts(ctx, storage.NewRequest(),
		storage.Lookup{"particular_type": models.ParticularTypePost},
		storage.Lookup{"particular_type": models.ParticularTypeItem})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUpdatePostRecordsVersion(t *testing.T) {
	s := newStorage()
	post := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	post.Headline = "before"
	require.NoError(t, s.InsertPost(ctx, post))

	headline := "after"
	updated, err := s.UpdatePost(ctx, post.GetId(), &models.PostUpdate{Headline: &headline})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Headline)
	assert.Equal(t, 2, updated.CurrentVersion)
	assert.True(t, updated.Updated.After(post.Updated))

	versions, total, err := s.FindVersions(ctx, storage.NewRequest(), nil, storage.Lookup{"_id_document": post.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "before", versions[0].Post.Headline)
	assert.Equal(t, "after", versions[1].Post.Headline)

	_, err = s.UpdatePost(ctx, primitive.NewObjectID().Hex(), &models.PostUpdate{Headline: &headline})
	assert.True(t, errors.Is(err, storage.NotFoundError))
}

func TestStoredPostIsIsolatedFromCallers(t *testing.T) {
	s := newStorage()
	post := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	post.Groups = []models.Group{{ID: "main", Refs: []models.Association{{ResidRef: "a"}}}}
	require.NoError(t, s.InsertPost(ctx, post))

	post.Groups[0].Refs[0].ResidRef = "changed"
	found, err := s.FindPost(ctx, post.GetId())
	require.NoError(t, err)
	assert.Equal(t, "a", found.Groups[0].Refs[0].ResidRef)

	found.Groups[0].Refs[0].Item = &models.Resolution{}
	again, err := s.FindPost(ctx, post.GetId())
	require.NoError(t, err)
	assert.Nil(t, again.Groups[0].Refs[0].Item)
}

func TestDeletePost(t *testing.T) {
	s := newStorage()
	post := newPost(primitive.NewObjectID(), models.ParticularTypePost)
	require.NoError(t, s.InsertPost(ctx, post))

	deleted, err := s.DeletePost(ctx, post.GetId())
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)

	_, err = s.FindPost(ctx, post.GetId())
	assert.True(t, errors.Is(err, storage.NotFoundError))
	_, err = s.DeletePost(ctx, post.GetId())
	assert.True(t, errors.Is(err, storage.NotFoundError))
}

func TestPagination(t *testing.T) {
	s := newStorage()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertPost(ctx, newPost(primitive.NewObjectID(), models.ParticularTypePost)))
	}

	posts, total, err := s.FindPosts(ctx, &storage.Request{Page: 4, MaxResults: 1}, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, posts)

	posts, total, err = s.FindPosts(ctx, &storage.Request{Page: math.MaxInt64, MaxResults: storage.MaxResultsLimit}, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, posts)

	versions, _, err := s.FindVersions(ctx, &storage.Request{Page: 368934881474191034, MaxResults: 50}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, versions)
}
