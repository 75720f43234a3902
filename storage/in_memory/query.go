package in_memory

import (
	"liveblog/storage"
	"liveblog/storage/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func postMatches(post *models.Post, query storage.Lookup) bool {
	for field, value := range query {
		var ok bool
		switch field {
		case "_id":
			ok = sameId(post.ID, value)
		case "blog":
			ok = sameId(post.Blog, value)
		case "type":
			ok = post.Type == value
		case "particular_type":
			ok = post.ParticularType == value
		case "original_creator":
			ok = post.OriginalCreator == value
		case "_current_version":
			ok = post.CurrentVersion == value
		}
		if !ok {
			return false
		}
	}
	return true
}

func versionMatches(version *models.Version, query storage.Lookup) bool {
	for field, value := range query {
		var ok bool
		switch field {
		case "_id":
			ok = sameId(version.ID, value)
		case "_id_document":
			ok = sameId(version.DocumentID, value)
		case "type":
			ok = version.Type == value
		case "_current_version":
			ok = version.Number == value
		case "blog":
			ok = sameId(version.Post.Blog, value)
		case "particular_type":
			ok = version.Post.ParticularType == value
		case "original_creator":
			ok = version.Post.OriginalCreator == value
		}
		if !ok {
			return false
		}
	}
	return true
}

func sameId(id primitive.ObjectID, value interface{}) bool {
	switch v := value.(type) {
	case primitive.ObjectID:
		return id == v
	case string:
		return id.Hex() == v
	}
	return false
}

type sortValue func(field string) int64

func postSortValue(post *models.Post) sortValue {
	return func(field string) int64 {
		switch field {
		case "_updated":
			return post.Updated.UnixNano()
		case "_created":
			return post.Created.UnixNano()
		case "versioncreated":
			return post.VersionCreated.UnixNano()
		case "_current_version":
			return int64(post.CurrentVersion)
		}
		return 0
	}
}

func versionSortValue(version *models.Version) sortValue {
	return func(field string) int64 {
		switch field {
		case "_updated":
			return version.Post.Updated.UnixNano()
		case "_created":
			return version.Post.Created.UnixNano()
		case "versioncreated":
			return version.VersionCreated.UnixNano()
		case "_current_version":
			return int64(version.Number)
		}
		return 0
	}
}

func lessBy(keys []storage.SortKey, a, b sortValue) bool {
	for _, key := range keys {
		va, vb := a(key.Field), b(key.Field)
		if va == vb {
			continue
		}
		if key.Descending {
			return va > vb
		}
		return va < vb
	}
	return false
}

func pageBounds(n int, req *storage.Request) (int, int) {
	skip := req.Skip()
	lo := n
	if skip < int64(n) {
		lo = int(skip)
	}
	if lo < 0 {
		lo = 0
	}
	hi := lo + req.Limit()
	if hi > n {
		hi = n
	}
	return lo, hi
}
