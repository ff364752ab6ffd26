package service

import (
	"fmt"
	"sort"
	"strings"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/model"
)

// SortField 問題一覧の並び替え対象
type SortField string

const (
	SortByType       SortField = "type"
	SortBySeverity   SortField = "severity"
	SortByConfidence SortField = "confidence"
	SortByDetectedAt SortField = "detected_at"
)

// SortOrder 並び順
type SortOrder struct {
	Field      SortField
	Descending bool
}

// ParseSortOrder は "confidence" や "-detected_at" のような指定を解釈する
// 先頭の "-" は降順を表す。空文字はゼロ値（並び替えなし）
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortOrder{}, nil
	}
	order := SortOrder{}
	if strings.HasPrefix(s, "-") {
		order.Descending = true
		s = s[1:]
	}
	switch f := SortField(s); f {
	case SortByType, SortBySeverity, SortByConfidence, SortByDetectedAt:
		order.Field = f
		return order, nil
	default:
		return SortOrder{}, fmt.Errorf("未対応のソート項目: %q", s)
	}
}

// FilterIssues はフィルタ条件に一致する問題を元の順序のまま返す
func FilterIssues(issues []*model.Issue, filters model.FilterState) []*model.Issue {
	result := make([]*model.Issue, 0, len(issues))
	for _, issue := range issues {
		if MatchesFilters(issue, filters) {
			result = append(result, issue)
		}
	}
	return result
}

// MatchesFilters は1件の問題がすべての条件を満たすか判定する
func MatchesFilters(issue *model.Issue, filters model.FilterState) bool {
	if len(filters.IssueTypes) > 0 && !containsType(filters.IssueTypes, issue.Type) {
		return false
	}
	if len(filters.Severities) > 0 && !containsSeverity(filters.Severities, issue.Severity) {
		return false
	}
	if issue.Confidence < filters.ConfidenceMin {
		return false
	}
	if filters.Region != "" && issue.Region != filters.Region {
		return false
	}
	if dr := filters.DateRange; dr != nil {
		if !dr.Start.IsZero() && issue.DetectedAt.Before(dr.Start) {
			return false
		}
		if !dr.End.IsZero() && issue.DetectedAt.After(dr.End) {
			return false
		}
	}
	if filters.Bounds != nil && !helper.IsWithinBounds(issue.Coordinates, *filters.Bounds) {
		return false
	}
	if q := strings.TrimSpace(filters.SearchQuery); q != "" && !matchesSearch(issue, q) {
		return false
	}
	return true
}

// matchesSearch はID・説明・Wikidata ID・OSM IDの部分一致（大文字小文字を区別しない）
func matchesSearch(issue *model.Issue, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{issue.ID, issue.Description, issue.WikidataID, issue.OSMID} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// SortIssues は指定順で安定ソートしたコピーを返す
func SortIssues(issues []*model.Issue, order SortOrder) []*model.Issue {
	sorted := make([]*model.Issue, len(issues))
	copy(sorted, issues)
	if order.Field == "" {
		return sorted
	}

	less := func(a, b *model.Issue) bool {
		switch order.Field {
		case SortByType:
			return a.Type < b.Type
		case SortBySeverity:
			return severityRank(a.Severity) < severityRank(b.Severity)
		case SortByConfidence:
			return a.Confidence < b.Confidence
		default:
			return a.DetectedAt.Before(b.DetectedAt)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if order.Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// Paginate はページ番号（1始まり）とページサイズで切り出す
// 範囲外のページは空スライスを返す
func Paginate(issues []*model.Issue, page, pageSize int) ([]*model.Issue, model.PaginationParams) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(issues)
	}
	params := model.PaginationParams{Page: page, PageSize: pageSize, Total: len(issues)}

	start := (page - 1) * pageSize
	if start >= len(issues) {
		return []*model.Issue{}, params
	}
	end := start + pageSize
	if end > len(issues) {
		end = len(issues)
	}
	return issues[start:end], params
}

func severityRank(s model.Severity) int {
	for i, v := range model.GetAllSeverities() {
		if v == s {
			return i
		}
	}
	return -1
}

func containsType(types []model.IssueType, t model.IssueType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsSeverity(severities []model.Severity, s model.Severity) bool {
	for _, v := range severities {
		if v == s {
			return true
		}
	}
	return false
}
