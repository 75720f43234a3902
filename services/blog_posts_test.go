package services

import (
	"errors"
	"liveblog/storage"
	"liveblog/storage/models"
)

func (s *PostsSuite) TestBlogPostsScopesToBlog() {
	other := s.createBlog("Sports")
	mine := []*models.Post{s.createPost(s.blog, "one"), s.createPost(s.blog, "two")}
	s.createPost(other, "elsewhere")
	nested := s.newPost(s.blog, "nested")
	nested.ParticularType = models.ParticularTypeItem
	s.Require().NoError(s.posts.Create(ctx, s.editor, []*models.Post{nested}))

	posts, total, err := s.blogPosts.Get(ctx, nil, storage.Lookup{"blog_id": s.blog.ID.Hex()})
	s.Require().NoError(err)

	s.EqualValues(2, total)
	s.ElementsMatch(ids(mine), ids(posts))
	for _, post := range posts {
		s.Equal(s.blog.ID, post.Blog)
		s.Equal(models.ParticularTypePost, post.ParticularType)
	}
}

func (s *PostsSuite) TestBlogPostsAddsSelfLinks() {
	a7 := s.createItem("a7")
	s.createPost(s.blog, "with refs", "", a7.GetId())
	s.createPost(s.blog, "without refs")

	posts, _, err := s.blogPosts.Get(ctx, nil, storage.Lookup{"blog_id": s.blog.ID.Hex()})
	s.Require().NoError(err)
	s.Require().Len(posts, 2)

	for _, post := range posts {
		s.Require().NotNil(post.Links)
		s.Equal("Posts", post.Links.Self.Title)
		s.Equal("posts/"+post.GetId(), post.Links.Self.Href)
		if post.Headline == "with refs" {
			s.Require().NotNil(post.Groups[1].Refs[1].Item)
			s.Equal(a7.ID, post.Groups[1].Refs[1].Item.Item.ID)
		}
	}
}

func (s *PostsSuite) TestBlogPostsIsSubsetOfPosts() {
	other := s.createBlog("Sports")
	s.createPost(s.blog, "one")
	s.createPost(other, "two")

	all, _, err := s.posts.Get(ctx, nil, nil)
	s.Require().NoError(err)
	scoped, _, err := s.blogPosts.Get(ctx, nil, storage.Lookup{"blog_id": other.ID.Hex()})
	s.Require().NoError(err)

	s.Subset(ids(all), ids(scoped))
	s.Len(scoped, 1)
}

func (s *PostsSuite) TestBlogPostsDoesNotTouchCallerLookup() {
	lookup := storage.Lookup{"blog_id": s.blog.ID.Hex()}

	_, _, err := s.blogPosts.Get(ctx, nil, lookup)
	s.Require().NoError(err)

	s.Equal(storage.Lookup{"blog_id": s.blog.ID.Hex()}, lookup)
}

func (s *PostsSuite) TestBlogPostsRejectsMalformedBlogId() {
	_, _, err := s.blogPosts.Get(ctx, nil, storage.Lookup{"blog_id": "not-a-blog"})
	s.True(errors.Is(err, storage.ClientError))
}

func (s *PostsSuite) TestBlogPostsWithoutBlogId() {
	s.createPost(s.blog, "one")

	posts, _, err := s.blogPosts.Get(ctx, nil, nil)
	s.Require().NoError(err)
	s.Len(posts, 1)
	s.NotNil(posts[0].Links)
}
