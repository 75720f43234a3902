package services

import (
	"context"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const postsLocation = "posts"

var blogPostsSelfLink = models.LinkTemplate{Title: "Posts", Href: "{location}/{id}"}

// BlogPosts is the read only view of the posts of one blog.
type BlogPosts struct {
	packageService
}

func NewBlogPosts(store storage.Storage) *BlogPosts {
	return &BlogPosts{packageService: packageService{store: store}}
}

// Get understands a "blog_id" lookup key holding the blog's hex id.
func (s *BlogPosts) Get(ctx context.Context, req *storage.Request, lookup storage.Lookup) ([]*models.Post, int64, error) {
	scoped := make(storage.Lookup, len(lookup))
	for k, v := range lookup {
		scoped[k] = v
	}
	if raw, found := scoped["blog_id"]; found {
		hex, _ := raw.(string)
		blog, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid blog id %v: %w", raw, storage.ClientError)
		}
		scoped["blog"] = blog
		delete(scoped, "blog_id")
	}

	posts, total, err := s.get(ctx, req, postsFilter, scoped)
	if err != nil {
		return nil, 0, err
	}
	for _, post := range posts {
		post.Links = models.BuildSelfLink(blogPostsSelfLink, post.GetId(), postsLocation)
	}
	posts, err = s.resolveAll(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
