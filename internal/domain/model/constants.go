package model

// IssueTypeConstants はアプリケーションで使用する問題種別の定数
const (
	IssueMissingProperty IssueType = "missing_property"
	IssueIncorrectValue  IssueType = "incorrect_value"
	IssueFormatError     IssueType = "format_error"
	IssueDuplicate       IssueType = "duplicate"
	IssueOutdated        IssueType = "outdated"
	IssueGeospatialError IssueType = "geospatial_error"
	IssueReferenceError  IssueType = "reference_error"
)

// SeverityConstants は深刻度の定数
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IssueTypeLabelMap は問題種別IDから表示名（フランス語）へのマッピング
var IssueTypeLabelMap = map[IssueType]string{
	IssueMissingProperty: "Propriété manquante",
	IssueIncorrectValue:  "Valeur incorrecte",
	IssueFormatError:     "Erreur de format",
	IssueDuplicate:       "Doublon",
	IssueOutdated:        "Données obsolètes",
	IssueGeospatialError: "Erreur géospatiale",
	IssueReferenceError:  "Erreur de référence",
}

// SeverityLabelMap は深刻度から表示名（フランス語）へのマッピング
var SeverityLabelMap = map[Severity]string{
	SeverityLow:      "Faible",
	SeverityMedium:   "Moyenne",
	SeverityHigh:     "Élevée",
	SeverityCritical: "Critique",
}

// SeverityColorMap は深刻度からUIカラートークンへのマッピング
var SeverityColorMap = map[Severity]string{
	SeverityLow:      "success",
	SeverityMedium:   "warning",
	SeverityHigh:     "error",
	SeverityCritical: "error",
}

// GetIssueTypeLabel は問題種別の表示名を取得する
func GetIssueTypeLabel(t IssueType) string {
	if label, ok := IssueTypeLabelMap[t]; ok {
		return label
	}
	return string(t) // デフォルトはそのまま返す
}

// GetSeverityLabel は深刻度の表示名を取得する
func GetSeverityLabel(s Severity) string {
	if label, ok := SeverityLabelMap[s]; ok {
		return label
	}
	return string(s)
}

// GetAllIssueTypes は全問題種別の一覧を取得する
func GetAllIssueTypes() []IssueType {
	return []IssueType{
		IssueMissingProperty,
		IssueIncorrectValue,
		IssueFormatError,
		IssueDuplicate,
		IssueOutdated,
		IssueGeospatialError,
		IssueReferenceError,
	}
}

// GetAllSeverities は全深刻度の一覧を取得する（低い順）
func GetAllSeverities() []Severity {
	return []Severity{
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}

// IsValidIssueType は既知の問題種別かどうかを判定する
func IsValidIssueType(t IssueType) bool {
	_, ok := IssueTypeLabelMap[t]
	return ok
}

// IsValidSeverity は既知の深刻度かどうかを判定する
func IsValidSeverity(s Severity) bool {
	_, ok := SeverityLabelMap[s]
	return ok
}
