package strategy

import (
	"strings"

	"QualityRadar-App/internal/domain/model"
)

// QuickStatementsStrategy はWikidata一括編集用のQuickStatements行を出力する
// Wikidata IDを持たない問題は出力しない
type QuickStatementsStrategy struct{}

// NewQuickStatementsStrategy は新しいQuickStatementsStrategyを作成
func NewQuickStatementsStrategy() ExportStrategy {
	return &QuickStatementsStrategy{}
}

func (s *QuickStatementsStrategy) Format() model.ExportFormat {
	return model.ExportQuickStatements
}

func (s *QuickStatementsStrategy) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (s *QuickStatementsStrategy) Render(issues []*model.Issue) ([]byte, int, error) {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		if !issue.HasWikidataID() {
			continue
		}
		lines = append(lines, issue.WikidataID+"|P1|"+quoteStatementString(issue.Description))
	}
	return []byte(strings.Join(lines, "\n")), len(lines), nil
}

// 1問題1行を保つため改行は空白にする
var statementLineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// quoteStatementString は値をそのまま二重引用符で囲む。引用符だけエスケープする
func quoteStatementString(s string) string {
	s = statementLineBreaks.Replace(s)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
