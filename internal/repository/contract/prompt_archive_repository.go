package contract

import (
	"context"

	"prompt-builder-bot/internal/entity"
	"prompt-builder-bot/internal/repository/specification"
)

type PromptArchiveRepository interface {
	Create(ctx context.Context, archive *entity.PromptArchive) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PromptArchive, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
