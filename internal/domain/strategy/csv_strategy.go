package strategy

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"QualityRadar-App/internal/domain/model"
)

var csvHeader = []string{"ID", "Type", "Sévérité", "Confiance", "Description", "Date"}

// CSVStrategy はヘッダー付きCSVを出力する
type CSVStrategy struct{}

// NewCSVStrategy は新しいCSVStrategyを作成
func NewCSVStrategy() ExportStrategy {
	return &CSVStrategy{}
}

func (s *CSVStrategy) Format() model.ExportFormat {
	return model.ExportCSV
}

func (s *CSVStrategy) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render はカンマ・改行・引用符を含む値をクォートし、末尾の改行は付けない
func (s *CSVStrategy) Render(issues []*model.Issue) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, 0, err
	}
	for _, issue := range issues {
		row := []string{
			issue.ID,
			string(issue.Type),
			string(issue.Severity),
			strconv.Itoa(issue.Confidence),
			issue.Description,
			formatExportTime(issue.DetectedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), len(issues), nil
}
