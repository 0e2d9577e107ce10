package repository

import (
	"context"
	"errors"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/observability"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"

	"gorm.io/gorm"
)

// PostRepository defines owner-scoped persistence for journal posts.
// Every read and write filters on both the post id and the owner id.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagNames []string) error
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	GetByID(ctx context.Context, id, userID uint) (*models.Post, error)
	// Update overwrites every mutable column of post. Tags are replaced only
	// when tagInput.Present is set.
	Update(ctx context.Context, post *models.Post, tagInput tags.Input) error
	Delete(ctx context.Context, id, userID uint) error
}

type postRepository struct {
	db   *gorm.DB
	tags TagRepository
}

// NewPostRepository creates a new post repository. Tag writes share the post's transaction.
func NewPostRepository(db *gorm.DB, tagRepo TagRepository) PostRepository {
	return &postRepository{db: db, tags: tagRepo}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tagNames []string) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("insert", "posts")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return models.NewInternalError(err)
		}
		if len(tagNames) > 0 {
			return r.tags.WithTx(tx).Link(ctx, post.ID, tagNames)
		}
		return nil
	})
	if err != nil {
		return asInternal(err)
	}

	post.Tags = tags.Normalize(tagNames)
	return nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.tags.AttachToPosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id, userID uint) (*models.Post, error) {
	post, err := findOwned(ctx, r.db, id, userID)
	if err != nil {
		return nil, err
	}
	one := []models.Post{*post}
	if err := r.tags.AttachToPosts(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, tagInput tags.Input) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("update", "posts")()

	var updated *models.Post
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND user_id = ?", post.ID, post.UserID).
			Updates(updatableColumns(post))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}

		txTags := r.tags.WithTx(tx)
		if tagInput.Present {
			if err := txTags.Replace(ctx, post.ID, tagInput.Names); err != nil {
				return err
			}
		}

		fresh, err := findOwned(ctx, tx, post.ID, post.UserID)
		if err != nil {
			return err
		}
		one := []models.Post{*fresh}
		if err := txTags.AttachToPosts(ctx, one); err != nil {
			return err
		}
		updated = &one[0]
		return nil
	})
	if err != nil {
		return asInternal(err)
	}

	*post = *updated
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id, userID uint) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Delete", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("delete", "posts")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Post{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		// No-op under ON DELETE CASCADE; required where FKs are not enforced.
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return asInternal(err)
}

func findOwned(ctx context.Context, db *gorm.DB, id, userID uint) (*models.Post, error) {
	var post models.Post
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// updatableColumns lists every mutable column, nil values included, so an
// update always writes the full row. created_at and user_id stay untouched.
func updatableColumns(p *models.Post) map[string]any {
	return map[string]any{
		"title":           p.Title,
		"description":     p.Description,
		"location":        p.Location,
		"latitude":        p.Latitude,
		"longitude":       p.Longitude,
		"mood":            p.Mood,
		"positive_note":   p.PositiveNote,
		"negative_note":   p.NegativeNote,
		"physical_effort": p.PhysicalEffort,
		"economic_effort": p.EconomicEffort,
		"actual_cost":     p.ActualCost,
		"media_url":       p.MediaURL,
	}
}

// asInternal passes AppErrors through and wraps anything else (commit
// failures, for instance) as internal.
func asInternal(err error) error {
	if err == nil {
		return nil
	}
	return models.AsAppError(err)
}
