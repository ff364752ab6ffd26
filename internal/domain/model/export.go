package model

import (
	"fmt"
	"strings"
)

// ExportFormat エクスポート形式
type ExportFormat string

const (
	ExportCSV             ExportFormat = "csv"
	ExportJSON            ExportFormat = "json"
	ExportXML             ExportFormat = "xml"
	ExportQuickStatements ExportFormat = "quickstatements"
)

// ParseExportFormat 文字列からエクスポート形式を取得
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportCSV, ExportJSON, ExportXML, ExportQuickStatements:
		return f, nil
	default:
		return "", fmt.Errorf("未対応のエクスポート形式: %q", s)
	}
}

// FileExtension ダウンロード時の拡張子
func (f ExportFormat) FileExtension() string {
	if f == ExportQuickStatements {
		return "txt"
	}
	return string(f)
}

// ExportResult 生成されたエクスポートファイル
type ExportResult struct {
	Format      ExportFormat
	FileName    string
	ContentType string
	Content     []byte
	IssueCount  int
}
