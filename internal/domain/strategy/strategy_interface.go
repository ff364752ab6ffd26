package strategy

import (
	"time"

	"QualityRadar-App/internal/domain/model"
)

// エクスポートの日時表記（UTC・ミリ秒付きRFC 3339）
const exportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportStrategy は、問題一覧を1つのファイル形式に変換する戦略のインターフェース
type ExportStrategy interface {
	// 担当するエクスポート形式
	Format() model.ExportFormat

	// ダウンロード時のContent-Type
	ContentType() string

	// 問題一覧をファイル内容に変換し、実際に出力した件数を返す
	// 形式によっては一部の問題を出力しないため、件数は入力と異なる場合がある
	Render(issues []*model.Issue) ([]byte, int, error)
}

// DefaultStrategies は対応している全形式の戦略を返す
func DefaultStrategies() []ExportStrategy {
	return []ExportStrategy{
		NewCSVStrategy(),
		NewJSONStrategy(),
		NewXMLStrategy(),
		NewQuickStatementsStrategy(),
	}
}

func formatExportTime(t time.Time) string {
	return t.UTC().Format(exportTimeLayout)
}
