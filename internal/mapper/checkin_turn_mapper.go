package mapper

import (
	"encoding/json"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/model"

	"gorm.io/datatypes"
)

type CheckinTurnMapper struct{}

func NewCheckinTurnMapper() *CheckinTurnMapper {
	return &CheckinTurnMapper{}
}

func (m *CheckinTurnMapper) ToEntity(t *model.CheckinTurn) *entity.CheckinTurn {
	if t == nil {
		return nil
	}

	var metadata map[string]any
	if len(t.Metadata) > 0 {
		// Unreadable metadata is dropped rather than failing the whole history read.
		_ = json.Unmarshal(t.Metadata, &metadata)
	}

	return &entity.CheckinTurn{
		Id:             t.Id,
		PatientId:      t.PatientId,
		Prompt:         t.Prompt,
		Reply:          t.Reply,
		Intent:         t.Intent,
		Provider:       t.Provider,
		LatencyMs:      t.LatencyMs,
		FallbackUsed:   t.FallbackUsed,
		FallbackReason: t.FallbackReason,
		Sentiment:      t.Sentiment,
		ShouldAlert:    t.ShouldAlert,
		Metadata:       metadata,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *CheckinTurnMapper) ToModel(t *entity.CheckinTurn) *model.CheckinTurn {
	if t == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(t.Metadata) > 0 {
		if raw, err := json.Marshal(t.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.CheckinTurn{
		Id:             t.Id,
		PatientId:      t.PatientId,
		Prompt:         t.Prompt,
		Reply:          t.Reply,
		Intent:         t.Intent,
		Provider:       t.Provider,
		LatencyMs:      t.LatencyMs,
		FallbackUsed:   t.FallbackUsed,
		FallbackReason: t.FallbackReason,
		Sentiment:      t.Sentiment,
		ShouldAlert:    t.ShouldAlert,
		Metadata:       metadata,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *CheckinTurnMapper) ToEntities(turns []*model.CheckinTurn) []*entity.CheckinTurn {
	entities := make([]*entity.CheckinTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
