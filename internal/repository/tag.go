package repository

import (
	"context"

	"github.com/AlbertoOrlando/travel-journal-app/internal/cache"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/observability"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository owns the tags and post_tags tables.
type TagRepository interface {
	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) TagRepository
	// Link creates missing tags and links every normalized name to postID.
	Link(ctx context.Context, postID uint, names []string) error
	// Replace clears postID's links and then links names.
	Replace(ctx context.Context, postID uint, names []string) error
	// AttachToPosts fills Tags on every post with one query.
	AttachToPosts(ctx context.Context, posts []models.Post) error
	List(ctx context.Context) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) Link(ctx context.Context, postID uint, names []string) error {
	names = tags.Normalize(names)
	if len(names) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)

	var existing []models.Tag
	if err := db.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return models.NewInternalError(err)
	}
	ids := make(map[string]uint, len(names))
	for _, t := range existing {
		ids[t.Name] = t.ID
	}

	created := false
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		id, inserted, err := r.ensureTag(db, name)
		if err != nil {
			return err
		}
		ids[name] = id
		created = created || inserted
	}

	for _, name := range names {
		link := models.PostTag{PostID: postID, TagID: ids[name]}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return models.NewInternalError(err)
		}
	}

	if created {
		cache.InvalidateTagList(ctx)
	}
	return nil
}

// ensureTag inserts name unless a concurrent writer got there first, in
// which case the winner's id is read back.
func (r *tagRepository) ensureTag(db *gorm.DB, name string) (id uint, inserted bool, err error) {
	tag := models.Tag{Name: name}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag)
	if res.Error != nil {
		return 0, false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 && tag.ID != 0 {
		return tag.ID, true, nil
	}

	var found models.Tag
	if err := db.Where("name = ?", name).First(&found).Error; err != nil {
		return 0, false, models.NewInternalError(err)
	}
	return found.ID, false, nil
}

func (r *tagRepository) Replace(ctx context.Context, postID uint, names []string) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return r.Link(ctx, postID, names)
}

type postTagName struct {
	PostID uint
	Name   string
}

func (r *tagRepository) AttachToPosts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	defer observability.TrackQuery("select", "post_tags")()

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var rows []postTagName
	err := r.db.WithContext(ctx).
		Table("post_tags").
		Select("post_tags.post_id, tags.name").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	byPost := make(map[uint][]string, len(posts))
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], row.Name)
	}
	for i := range posts {
		names := byPost[posts[i].ID]
		if names == nil {
			names = []string{}
		}
		posts[i].Tags = names
	}
	return nil
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	list := []models.Tag{}
	err := cache.Aside(ctx, cache.TagListKey, &list, cache.TagListTTL, func() error {
		defer observability.TrackQuery("select", "tags")()
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
