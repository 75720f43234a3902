package persistent

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/bsonx"
	"time"
)

func ensureArchiveIndexes(ctx context.Context, archive *mongo.Collection) {
	indexModels := []mongo.IndexModel{
		{
			Keys: bsonx.Doc{
				{Key: "particular_type", Value: bsonx.Int32(1)},
				{Key: "_updated", Value: bsonx.Int32(-1)},
			},
		},
		{
			Keys: bsonx.Doc{
				{Key: "blog", Value: bsonx.Int32(1)},
				{Key: "particular_type", Value: bsonx.Int32(1)},
				{Key: "_updated", Value: bsonx.Int32(-1)},
			},
		},
	}
	opts := options.CreateIndexes().SetMaxTime(10 * time.Second)

	_, err := archive.Indexes().CreateMany(ctx, indexModels, opts)
	if err != nil {
		panic(fmt.Errorf("archive: failed to ensure indexes %w", err))
	}
}

func ensureVersionsIndexes(ctx context.Context, versions *mongo.Collection) {
	indexModels := []mongo.IndexModel{
		{
			Keys: bsonx.Doc{
				{Key: "_id_document", Value: bsonx.Int32(1)},
				{Key: "_current_version", Value: bsonx.Int32(1)},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bsonx.Doc{
				{Key: "type", Value: bsonx.Int32(1)},
			},
		},
	}
	opts := options.CreateIndexes().SetMaxTime(10 * time.Second)

	_, err := versions.Indexes().CreateMany(ctx, indexModels, opts)
	if err != nil {
		panic(fmt.Errorf("archive_versions: failed to ensure indexes %w", err))
	}
}
