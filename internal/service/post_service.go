package service

import (
	"context"
	"log/slog"

	"github.com/AlbertoOrlando/travel-journal-app/internal/filter"
	"github.com/AlbertoOrlando/travel-journal-app/internal/middleware"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/observability"
	"github.com/AlbertoOrlando/travel-journal-app/internal/repository"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"
	"github.com/AlbertoOrlando/travel-journal-app/internal/upload"
)

// MediaStore persists uploaded media and returns its public URL.
type MediaStore interface {
	Save(ctx context.Context, f upload.File) (string, error)
	Remove(url string) error
}

type PostService struct {
	posts repository.PostRepository
	media MediaStore
}

type CreatePostInput struct {
	UserID uint
	Fields PostFields
	Tags   tags.Input
	// Media, when set, wins over Fields.MediaURL.
	Media *upload.File
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Fields PostFields
	Tags   tags.Input
	Media  *upload.File
}

type ListPostsInput struct {
	UserID   uint
	Criteria filter.Criteria
	Sort     filter.SortKey
}

func NewPostService(posts repository.PostRepository, media MediaStore) *PostService {
	return &PostService{posts: posts, media: media}
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	defer func() { observability.PostWrites.WithLabelValues("create", observability.ResultLabel(err)).Inc() }()

	post, err := in.Fields.toPost(in.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkTags(tags.Normalize(in.Tags.Names)); err != nil {
		return nil, err
	}

	stored, err := s.storeMedia(ctx, in.Media)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		post.MediaURL = &stored
	}

	if err := s.posts.Create(ctx, post, in.Tags.Names); err != nil {
		s.discardMedia(ctx, stored)
		return nil, err
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]models.Post, error) {
	posts, err := s.posts.ListByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return filter.Sort(filter.Apply(posts, in.Criteria), in.Sort), nil
}

func (s *PostService) Get(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID, userID)
}

func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (_ *models.Post, err error) {
	defer func() { observability.PostWrites.WithLabelValues("update", observability.ResultLabel(err)).Inc() }()

	post, err := in.Fields.toPost(in.UserID)
	if err != nil {
		return nil, err
	}
	post.ID = in.PostID
	if err := checkTags(tags.Normalize(in.Tags.Names)); err != nil {
		return nil, err
	}

	stored, err := s.storeMedia(ctx, in.Media)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		post.MediaURL = &stored
	}

	if err := s.posts.Update(ctx, post, in.Tags); err != nil {
		s.discardMedia(ctx, stored)
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID uint) (err error) {
	defer func() { observability.PostWrites.WithLabelValues("delete", observability.ResultLabel(err)).Inc() }()
	return s.posts.Delete(ctx, postID, userID)
}

func (s *PostService) storeMedia(ctx context.Context, f *upload.File) (string, error) {
	if f == nil {
		return "", nil
	}
	if s.media == nil {
		return "", models.NewValidationError("Media uploads are not enabled")
	}
	return s.media.Save(ctx, *f)
}

// discardMedia removes a file stored for a write that did not commit.
func (s *PostService) discardMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Remove(url); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove orphaned upload",
			slog.String("url", url), slog.String("error", err.Error()))
	}
}
