package persistent_cached

import (
	"context"
	"encoding/json"
	"liveblog/storage"
	"liveblog/storage/models"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/go-redis/redis/v8"
)

const (
	itemKeyPrefix = "archive:item:"
	postKeyPrefix = "archive:post:"
)

func saveToCache(ctx context.Context, client *redis.Client, key string, value interface{}, ttl time.Duration) {
	j, err := json.Marshal(value)
	if err == nil {
		err = client.Set(ctx, key, j, ttl).Err()
	}
	if err != nil {
		log.WARNING.Printf("Failed to save %s to redis: %s", key, err)
	}
}

func getFromCache(ctx context.Context, client *redis.Client, key string, value interface{}) bool {
	val, err := client.Get(ctx, key).Result()
	if err == nil {
		err = json.Unmarshal([]byte(val), value)
		if err == nil {
			return true
		}
	}
	if err != redis.Nil {
		log.WARNING.Printf("Failed to get %s from redis: %s", key, err)
	}
	return false
}

func removeFromCache(ctx context.Context, client *redis.Client, keys ...string) {
	err := client.Del(ctx, keys...).Err()
	if err != nil {
		log.WARNING.Printf("Failed to remove %v from redis: %s", keys, err.Error())
	}
}

func CreatePersistentStorageCachedWithRedis(persistentStorage storage.Storage, redisUrl string, ttl time.Duration) storage.Storage {
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisUrl,
	})
	return NewPersistentStorageWithCache(persistentStorage, redisClient, ttl)
}

func NewPersistentStorageWithCache(persistentStorage storage.Storage, client *redis.Client, ttl time.Duration) *PersistentStorageWithCache {
	return &PersistentStorageWithCache{
		client:            client,
		persistentStorage: persistentStorage,
		ttl:               ttl,
	}
}

// PersistentStorageWithCache caches point lookups of archive documents.
// Only documents as returned by the persistent storage are cached, so
// resolved association items never reach redis.
type PersistentStorageWithCache struct {
	client            *redis.Client
	persistentStorage storage.Storage
	ttl               time.Duration
}

func (s *PersistentStorageWithCache) InsertItem(ctx context.Context, item *models.Item) error {
	err := s.persistentStorage.InsertItem(ctx, item)
	if err == nil {
		saveToCache(ctx, s.client, itemKeyPrefix+item.GetId(), item, s.ttl)
	}
	return err
}

func (s *PersistentStorageWithCache) FindItem(ctx context.Context, id string) (*models.Item, error) {
	var cached models.Item
	if getFromCache(ctx, s.client, itemKeyPrefix+id, &cached) {
		return &cached, nil
	}
	item, err := s.persistentStorage.FindItem(ctx, id)
	if err == nil {
		saveToCache(ctx, s.client, itemKeyPrefix+id, item, s.ttl)
	}
	return item, err
}

func (s *PersistentStorageWithCache) InsertBlog(ctx context.Context, blog *models.Blog) error {
	return s.persistentStorage.InsertBlog(ctx, blog)
}

func (s *PersistentStorageWithCache) FindBlog(ctx context.Context, id string) (*models.Blog, error) {
	return s.persistentStorage.FindBlog(ctx, id)
}

func (s *PersistentStorageWithCache) FindPosts(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Post, int64, error) {
	return s.persistentStorage.FindPosts(ctx, req, filter, lookup)
}

func (s *PersistentStorageWithCache) FindPost(ctx context.Context, id string) (*models.Post, error) {
	var cached models.Post
	if getFromCache(ctx, s.client, postKeyPrefix+id, &cached) {
		return &cached, nil
	}
	post, err := s.persistentStorage.FindPost(ctx, id)
	if err == nil {
		saveToCache(ctx, s.client, postKeyPrefix+id, post, s.ttl)
	}
	return post, err
}

func (s *PersistentStorageWithCache) InsertPost(ctx context.Context, post *models.Post) error {
	return s.persistentStorage.InsertPost(ctx, post)
}

func (s *PersistentStorageWithCache) UpdatePost(ctx context.Context, id string, updates *models.PostUpdate) (*models.Post, error) {
	post, err := s.persistentStorage.UpdatePost(ctx, id, updates)
	if err == nil {
		// a post is also an archive item
		removeFromCache(ctx, s.client, postKeyPrefix+id, itemKeyPrefix+id)
	}
	return post, err
}

func (s *PersistentStorageWithCache) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.persistentStorage.DeletePost(ctx, id)
	if err == nil {
		removeFromCache(ctx, s.client, postKeyPrefix+id, itemKeyPrefix+id)
	}
	return post, err
}

func (s *PersistentStorageWithCache) FindVersions(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Version, int64, error) {
	return s.persistentStorage.FindVersions(ctx, req, filter, lookup)
}
