package services

import (
	"liveblog/storage"
	"liveblog/storage/models"
)

func (s *PostsSuite) TestVersionsRecordEveryChange() {
	post := s.createPost(s.blog, "v1")
	headline := "v2"
	_, err := s.posts.Update(ctx, s.editor, post.GetId(), &models.PostUpdate{Headline: &headline})
	s.Require().NoError(err)
	s.createPost(s.blog, "unrelated")

	versions, total, err := s.versions.Get(ctx, nil, storage.Lookup{"_id_document": post.ID})
	s.Require().NoError(err)

	s.EqualValues(2, total)
	s.Require().Len(versions, 2)
	s.Equal(1, versions[0].Number)
	s.Equal("v1", versions[0].Post.Headline)
	s.Equal(2, versions[1].Number)
	s.Equal("v2", versions[1].Post.Headline)
	s.Equal(s.editor.User.ID, versions[1].VersionCreator)
	for _, version := range versions {
		s.Equal(models.TypeComposite, version.Type)
		s.Equal(post.ID, version.DocumentID)
	}
}

func (s *PostsSuite) TestVersionsSingleVersionLookup() {
	post := s.createPost(s.blog, "v1")
	headline := "v2"
	_, err := s.posts.Update(ctx, s.editor, post.GetId(), &models.PostUpdate{Headline: &headline})
	s.Require().NoError(err)

	versions, _, err := s.versions.Get(ctx, storage.NewRequest(), storage.Lookup{
		"_id_document":     post.ID,
		"_current_version": 1,
	})
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal("v1", versions[0].Post.Headline)
}

func (s *PostsSuite) TestVersionsNewestFirst() {
	post := s.createPost(s.blog, "v1")
	headline := "v2"
	_, err := s.posts.Update(ctx, s.editor, post.GetId(), &models.PostUpdate{Headline: &headline})
	s.Require().NoError(err)

	req := storage.NewRequest()
	req.Sort = []storage.SortKey{{Field: "_current_version", Descending: true}}
	versions, _, err := s.versions.Get(ctx, req, storage.Lookup{"_id_document": post.ID})
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(2, versions[0].Number)
}
