package strategy

import (
	"encoding/xml"

	"QualityRadar-App/internal/domain/model"
)

type xmlIssues struct {
	XMLName xml.Name   `xml:"issues"`
	Issues  []xmlIssue `xml:"issue"`
}

type xmlIssue struct {
	ID          string `xml:"id,attr"`
	Type        string `xml:"type"`
	Severity    string `xml:"severity"`
	Confidence  int    `xml:"confidence"`
	Description string `xml:"description"`
	DetectedAt  string `xml:"detectedAt"`
}

// XMLStrategy は <issues><issue id="..."> 形式のXMLを出力する
type XMLStrategy struct{}

// NewXMLStrategy は新しいXMLStrategyを作成
func NewXMLStrategy() ExportStrategy {
	return &XMLStrategy{}
}

func (s *XMLStrategy) Format() model.ExportFormat {
	return model.ExportXML
}

func (s *XMLStrategy) ContentType() string {
	return "application/xml; charset=utf-8"
}

func (s *XMLStrategy) Render(issues []*model.Issue) ([]byte, int, error) {
	doc := xmlIssues{Issues: make([]xmlIssue, 0, len(issues))}
	for _, issue := range issues {
		doc.Issues = append(doc.Issues, xmlIssue{
			ID:          issue.ID,
			Type:        string(issue.Type),
			Severity:    string(issue.Severity),
			Confidence:  issue.Confidence,
			Description: issue.Description,
			DetectedAt:  formatExportTime(issue.DetectedAt),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	return append([]byte(xml.Header), body...), len(issues), nil
}
