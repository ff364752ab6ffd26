package strategy

import (
	"encoding/json"

	"QualityRadar-App/internal/domain/model"
)

// JSONStrategy は問題の配列を整形済みJSONで出力する
type JSONStrategy struct{}

// NewJSONStrategy は新しいJSONStrategyを作成
func NewJSONStrategy() ExportStrategy {
	return &JSONStrategy{}
}

func (s *JSONStrategy) Format() model.ExportFormat {
	return model.ExportJSON
}

func (s *JSONStrategy) ContentType() string {
	return "application/json; charset=utf-8"
}

func (s *JSONStrategy) Render(issues []*model.Issue) ([]byte, int, error) {
	if issues == nil {
		issues = []*model.Issue{}
	}
	content, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	return content, len(issues), nil
}
