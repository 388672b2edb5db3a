package mapper

import (
	"encoding/json"
	"fmt"

	"prompt-builder-bot/internal/entity"
	"prompt-builder-bot/internal/model"

	"gorm.io/datatypes"
)

type PromptArchiveMapper struct{}

func NewPromptArchiveMapper() *PromptArchiveMapper {
	return &PromptArchiveMapper{}
}

func (m *PromptArchiveMapper) ToModel(e *entity.PromptArchive) (*model.PromptArchive, error) {
	if e == nil {
		return nil, nil
	}

	answers, err := json.Marshal(e.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	recs, err := json.Marshal(e.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendations: %w", err)
	}

	return &model.PromptArchive{
		Id:              e.Id,
		UserId:          e.UserId,
		TaskDescription: e.TaskDescription,
		Answers:         datatypes.JSON(answers),
		Recommendations: datatypes.JSON(recs),
		Prompt:          e.Prompt,
		EditedCount:     e.EditedCount,
		SavedAt:         e.SavedAt,
	}, nil
}

func (m *PromptArchiveMapper) ToEntity(p *model.PromptArchive) (*entity.PromptArchive, error) {
	if p == nil {
		return nil, nil
	}

	e := &entity.PromptArchive{
		Id:              p.Id,
		UserId:          p.UserId,
		TaskDescription: p.TaskDescription,
		Prompt:          p.Prompt,
		EditedCount:     p.EditedCount,
		SavedAt:         p.SavedAt,
	}
	if len(p.Answers) > 0 {
		if err := json.Unmarshal(p.Answers, &e.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(p.Recommendations) > 0 {
		if err := json.Unmarshal(p.Recommendations, &e.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal recommendations: %w", err)
		}
	}
	return e, nil
}
