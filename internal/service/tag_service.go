package service

import (
	"context"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
)

// TagLister is the read side of repository.TagRepository.
type TagLister interface {
	List(ctx context.Context) ([]models.Tag, error)
}

type TagService struct {
	tags TagLister
}

func NewTagService(tags TagLister) *TagService {
	return &TagService{tags: tags}
}

// List returns every tag ordered by name.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}
