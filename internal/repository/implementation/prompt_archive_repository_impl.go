package implementation

import (
	"context"

	"prompt-builder-bot/internal/entity"
	"prompt-builder-bot/internal/mapper"
	"prompt-builder-bot/internal/model"
	"prompt-builder-bot/internal/repository/contract"
	"prompt-builder-bot/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromptArchiveRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PromptArchiveMapper
}

func NewPromptArchiveRepository(db *gorm.DB) contract.PromptArchiveRepository {
	return &PromptArchiveRepositoryImpl{
		db:     db,
		mapper: mapper.NewPromptArchiveMapper(),
	}
}

func (r *PromptArchiveRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PromptArchiveRepositoryImpl) Create(ctx context.Context, archive *entity.PromptArchive) error {
	if archive.Id == uuid.Nil {
		archive.Id = uuid.New()
	}
	m, err := r.mapper.ToModel(archive)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PromptArchiveRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PromptArchive, error) {
	var models []*model.PromptArchive
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.PromptArchive, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *PromptArchiveRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PromptArchive{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
