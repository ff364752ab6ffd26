package model

import "time"

// DateRange 検出日時の範囲
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterState 問題一覧の絞り込み条件
// 空のスライスは「条件なし」を意味する
type FilterState struct {
	SearchQuery   string      `json:"search_query"`
	IssueTypes    []IssueType `json:"issue_types"`
	Severities    []Severity  `json:"severities"`
	DateRange     *DateRange  `json:"date_range,omitempty"`
	ConfidenceMin int         `json:"confidence_min"`
	Region        string      `json:"region,omitempty"`
	Bounds        *Bounds     `json:"bounds,omitempty"`
}

// DefaultFilters 初期状態のフィルタ
func DefaultFilters() FilterState {
	return FilterState{
		IssueTypes: []IssueType{},
		Severities: []Severity{},
	}
}

// IsEmpty 条件が何も設定されていないか
func (f FilterState) IsEmpty() bool {
	return f.SearchQuery == "" &&
		len(f.IssueTypes) == 0 &&
		len(f.Severities) == 0 &&
		f.DateRange == nil &&
		f.ConfidenceMin == 0 &&
		f.Region == "" &&
		f.Bounds == nil
}
