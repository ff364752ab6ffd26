package service

import (
	"fmt"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/strategy"
)

// ExportService は問題一覧をダウンロード用ファイルに変換する
type ExportService interface {
	Export(issues []*model.Issue, format model.ExportFormat) (*model.ExportResult, error)
}

type exportService struct {
	strategies map[model.ExportFormat]strategy.ExportStrategy
}

// NewExportService は新しいExportServiceを作成
// 戦略を渡さない場合は対応している全形式を使う
func NewExportService(strategies ...strategy.ExportStrategy) ExportService {
	if len(strategies) == 0 {
		strategies = strategy.DefaultStrategies()
	}
	s := &exportService{strategies: make(map[model.ExportFormat]strategy.ExportStrategy, len(strategies))}
	for _, st := range strategies {
		s.strategies[st.Format()] = st
	}
	return s
}

// Export は形式に対応する戦略でファイル内容を生成する
func (s *exportService) Export(issues []*model.Issue, format model.ExportFormat) (*model.ExportResult, error) {
	st, ok := s.strategies[format]
	if !ok {
		return nil, fmt.Errorf("未対応のエクスポート形式: %q", format)
	}

	content, count, err := st.Render(issues)
	if err != nil {
		return nil, fmt.Errorf("%s形式の生成に失敗: %w", format, err)
	}

	return &model.ExportResult{
		Format:      format,
		FileName:    "issues." + format.FileExtension(),
		ContentType: st.ContentType(),
		Content:     content,
		IssueCount:  count,
	}, nil
}

// SelectExportIssues は選択中の問題があればそれを、なければ全件を返す
// 選択IDのうち一覧に存在しないものは無視する
func SelectExportIssues(issues []*model.Issue, selectedIDs []string) []*model.Issue {
	if len(selectedIDs) == 0 {
		return issues
	}
	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}
	result := make([]*model.Issue, 0, len(selectedIDs))
	for _, issue := range issues {
		if _, ok := selected[issue.ID]; ok {
			result = append(result, issue)
		}
	}
	if len(result) == 0 {
		return issues
	}
	return result
}
