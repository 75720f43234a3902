package persistent

import (
	"context"
	"errors"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStorage struct {
	archive  *mongo.Collection
	versions *mongo.Collection
	blogs    *mongo.Collection
}

func toObjectId(id string) (primitive.ObjectID, error) {
	mongoId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to convert provided id %q to Mongo object id %w", id, storage.NotFoundError)
	}
	return mongoId, nil
}

func now() time.Time {
	// mongo keeps millisecond precision
	return time.Now().UTC().Truncate(time.Millisecond)
}

func sortDoc(keys []storage.SortKey) bson.D {
	doc := bson.D{}
	for _, key := range keys {
		order := 1
		if key.Descending {
			order = -1
		}
		doc = append(doc, bson.E{Key: key.Field, Value: order})
	}
	return doc
}

var objectIdFields = map[string]bool{"_id": true, "blog": true, "_id_document": true}

// versionPostFields live on the post snapshot of a version record.
var versionPostFields = []string{"blog", "particular_type", "original_creator"}

// toFilter turns hex strings on id fields into ObjectIDs.
func toFilter(query storage.Lookup) bson.M {
	filter := bson.M{}
	for k, v := range query {
		if hex, ok := v.(string); ok && objectIdFields[k] {
			if id, err := primitive.ObjectIDFromHex(hex); err == nil {
				v = id
			}
		}
		filter[k] = v
	}
	return filter
}

func toVersionFilter(query storage.Lookup) bson.M {
	filter := toFilter(query)
	for _, field := range versionPostFields {
		if v, found := filter[field]; found {
			delete(filter, field)
			filter["post."+field] = v
		}
	}
	return filter
}

func (s *MongoStorage) InsertItem(ctx context.Context, item *models.Item) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	ts := now()
	item.Created, item.Updated = ts, ts
	_, err := s.archive.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("item %s already exists: %w", item.GetId(), storage.CollisionError)
		}
		return fmt.Errorf("failed to insert item: %s %w", err.Error(), storage.InternalError)
	}
	return nil
}

func (s *MongoStorage) FindItem(ctx context.Context, id string) (*models.Item, error) {
	var result models.Item
	itemMongoId, err := toObjectId(id)
	if err != nil {
		return nil, err
	}
	err = s.archive.FindOne(ctx, bson.M{"_id": itemMongoId}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no item with id %v: %w", id, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to find item: %s %w", err.Error(), storage.InternalError)
	}
	return &result, nil
}

func (s *MongoStorage) InsertBlog(ctx context.Context, blog *models.Blog) error {
	if blog.ID.IsZero() {
		blog.ID = primitive.NewObjectID()
	}
	ts := now()
	blog.Created, blog.Updated = ts, ts
	_, err := s.blogs.InsertOne(ctx, blog)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("blog %s already exists: %w", blog.ID.Hex(), storage.CollisionError)
		}
		return fmt.Errorf("failed to insert blog: %s %w", err.Error(), storage.InternalError)
	}
	return nil
}

func (s *MongoStorage) FindBlog(ctx context.Context, id string) (*models.Blog, error) {
	var result models.Blog
	blogMongoId, err := toObjectId(id)
	if err != nil {
		return nil, err
	}
	err = s.blogs.FindOne(ctx, bson.M{"_id": blogMongoId}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no blog with id %v: %w", id, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to find blog: %s %w", err.Error(), storage.InternalError)
	}
	return &result, nil
}

func (s *MongoStorage) FindPosts(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Post, int64, error) {

	query, err := storage.Merge(filter, lookup)
	if err != nil {
		return nil, 0, err
	}
	mongoFilter := toFilter(query)

	total, err := s.archive.CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %s, %w", err.Error(), storage.InternalError)
	}

	opts := options.Find()
	opts.SetSort(sortDoc(req.SortOr([]storage.SortKey{{Field: "_updated", Descending: true}})))
	opts.SetSkip(req.Skip())
	opts.SetLimit(int64(req.Limit()))

	cursor, err := s.archive.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find posts: %s, %w", err.Error(), storage.InternalError)
	}
	defer closeCursor(ctx, cursor)

	posts := make([]*models.Post, 0)
	for cursor.Next(ctx) {
		var nextPost models.Post
		if err = cursor.Decode(&nextPost); err != nil {
			return nil, 0, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
		}
		posts = append(posts, &nextPost)
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %s, %w", err, storage.InternalError)
	}
	return posts, total, nil
}

func (s *MongoStorage) FindPost(ctx context.Context, id string) (*models.Post, error) {
	var result models.Post
	postMongoId, err := toObjectId(id)
	if err != nil {
		return nil, err
	}
	err = s.archive.FindOne(ctx, bson.M{"_id": postMongoId, "type": models.TypeComposite}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to find post: %s %w", err.Error(), storage.InternalError)
	}
	return &result, nil
}

func (s *MongoStorage) InsertPost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	ts := now()
	post.Created, post.Updated = ts, ts
	post.CurrentVersion = 1

	_, err := s.archive.InsertOne(ctx, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("post %s already exists: %w", post.GetId(), storage.CollisionError)
		}
		return fmt.Errorf("failed to insert post: %s %w", err.Error(), storage.InternalError)
	}
	return s.insertVersion(ctx, post)
}

func (s *MongoStorage) UpdatePost(ctx context.Context, id string, updates *models.PostUpdate) (*models.Post, error) {
	var result models.Post
	postMongoId, err := toObjectId(id)
	if err != nil {
		return nil, err
	}

	set, err := bson.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post update: %s %w", err.Error(), storage.InternalError)
	}
	var setDoc bson.M
	if err = bson.Unmarshal(set, &setDoc); err != nil {
		return nil, fmt.Errorf("failed to encode post update: %s %w", err.Error(), storage.InternalError)
	}
	setDoc["_updated"] = now()

	filter := bson.M{"_id": postMongoId, "type": models.TypeComposite}
	update := bson.M{
		"$set": setDoc,
		"$inc": bson.M{"_current_version": 1},
	}

	upsert := false
	after := options.After
	opt := options.FindOneAndUpdateOptions{
		ReturnDocument: &after,
		Upsert:         &upsert,
	}
	err = s.archive.FindOneAndUpdate(ctx, filter, update, &opt).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to update post: %s %s %w", err.Error(), postMongoId, storage.InternalError)
	}
	if err = s.insertVersion(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *MongoStorage) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	var result models.Post
	postMongoId, err := toObjectId(id)
	if err != nil {
		return nil, err
	}
	err = s.archive.FindOneAndDelete(ctx, bson.M{"_id": postMongoId, "type": models.TypeComposite}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no post with id %v: %w", id, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to delete post: %s %w", err.Error(), storage.InternalError)
	}
	return &result, nil
}

func (s *MongoStorage) FindVersions(
	ctx context.Context, req *storage.Request, filter, lookup storage.Lookup) ([]*models.Version, int64, error) {

	query, err := storage.Merge(filter, lookup)
	if err != nil {
		return nil, 0, err
	}
	mongoFilter := toVersionFilter(query)

	total, err := s.versions.CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count versions: %s, %w", err.Error(), storage.InternalError)
	}

	opts := options.Find()
	opts.SetSort(sortDoc(req.SortOr([]storage.SortKey{{Field: "_current_version"}})))
	opts.SetSkip(req.Skip())
	opts.SetLimit(int64(req.Limit()))

	cursor, err := s.versions.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find versions: %s, %w", err.Error(), storage.InternalError)
	}

	// All closes the cursor
	versions := make([]*models.Version, 0)
	if err = cursor.All(ctx, &versions); err != nil {
		return nil, 0, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
	}
	return versions, total, nil
}

func (s *MongoStorage) insertVersion(ctx context.Context, post *models.Post) error {
	version := models.NewVersion(post)
	version.ID = primitive.NewObjectID()
	_, err := s.versions.InsertOne(ctx, version)
	if err != nil {
		return fmt.Errorf("failed to insert version %d of post %s: %s %w",
			version.Number, post.GetId(), err.Error(), storage.InternalError)
	}
	return nil
}

func closeCursor(ctx context.Context, cursor *mongo.Cursor) {
	if err := cursor.Close(ctx); err != nil {
		log.WARNING.Printf("Cursor closing failed: %s", err.Error())
	}
}

func CreateMongoStorage(dbUrl, dbName string) storage.Storage {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbUrl))
	if err != nil {
		panic(err)
	}
	db := client.Database(dbName)
	archive := db.Collection(storage.ArchiveSource)
	versions := db.Collection(storage.ArchiveVersionsSource)
	ensureArchiveIndexes(ctx, archive)
	ensureVersionsIndexes(ctx, versions)

	return &MongoStorage{
		archive:  archive,
		versions: versions,
		blogs:    db.Collection(storage.BlogsSource),
	}
}
