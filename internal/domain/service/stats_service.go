package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"QualityRadar-App/internal/domain/model"
)

// 傾向を比較する期間の長さ
const trendWindow = 24 * time.Hour

// ComputeStats は問題一覧からダッシュボードの統計を集計する
// 傾向は直近24時間とその前の24時間の検出件数を比較する
func ComputeStats(issues []*model.Issue, totalChecked int, now time.Time) model.DashboardStats {
	stats := model.DashboardStats{
		TotalIssues:          len(issues),
		TotalChecked:         totalChecked,
		AccuracyScore:        AccuracyScore(len(issues), totalChecked),
		IssueDistribution:    make(map[model.IssueType]int),
		SeverityDistribution: make(map[model.Severity]int),
		RegionStats:          make(map[string]int),
	}
	for _, t := range model.GetAllIssueTypes() {
		stats.IssueDistribution[t] = 0
	}
	for _, s := range model.GetAllSeverities() {
		stats.SeverityDistribution[s] = 0
	}

	var current, previous int
	for _, issue := range issues {
		stats.IssueDistribution[issue.Type]++
		stats.SeverityDistribution[issue.Severity]++
		if issue.Region != "" {
			stats.RegionStats[issue.Region]++
		}

		age := now.Sub(issue.DetectedAt)
		switch {
		case age >= 0 && age < trendWindow:
			current++
		case age >= trendWindow && age < 2*trendWindow:
			previous++
		}
	}
	stats.Trend = ComputeTrend(current, previous)
	return stats
}

// AccuracyScore は検査件数に対する問題のない割合（%）を整数で返す
func AccuracyScore(totalIssues, totalChecked int) int {
	if totalChecked <= 0 {
		return 0
	}
	score := int(math.Round(100 * float64(totalChecked-totalIssues) / float64(totalChecked)))
	if score < 0 {
		return 0
	}
	return score
}

// ComputeTrend は前期間比の変化率を小数1桁で返す
func ComputeTrend(current, previous int) model.Trend {
	if previous == 0 {
		if current == 0 {
			return model.Trend{Value: 0, Direction: model.TrendStable}
		}
		return model.Trend{Value: 100, Direction: model.TrendUp}
	}

	change := float64(current-previous) / float64(previous) * 100
	change = math.Round(change*10) / 10

	trend := model.Trend{Value: math.Abs(change), Direction: model.TrendStable}
	switch {
	case change > 0:
		trend.Direction = model.TrendUp
	case change < 0:
		trend.Direction = model.TrendDown
	}
	return trend
}

// NewIssueEvent は問題の登録・解決をタイムラインに記録するイベントを作る
func NewIssueEvent(issue *model.Issue, activity model.ActivityType, now time.Time) model.ActivityEvent {
	verb := "détecté"
	if activity == model.ActivityIssueResolved {
		verb = "résolu"
	}
	return model.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        activity,
		Timestamp:   now,
		Description: fmt.Sprintf("Problème %s %s : %s", issue.Type, verb, issue.Description),
		Metadata: map[string]any{
			"issue_id": issue.ID,
			"severity": string(issue.Severity),
		},
	}
}

// NewExportEvent はエクスポート生成をタイムラインに記録するイベントを作る
func NewExportEvent(result *model.ExportResult, now time.Time) model.ActivityEvent {
	return model.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        model.ActivityExportGenerated,
		Timestamp:   now,
		Description: fmt.Sprintf("Export %s généré (%d problèmes)", result.Format, result.IssueCount),
		Metadata: map[string]any{
			"format":      string(result.Format),
			"file_name":   result.FileName,
			"issue_count": result.IssueCount,
		},
	}
}

// Timeline はイベントを新しい順に並べ、最大limit件を返す（limit<=0なら全件）
func Timeline(events []model.ActivityEvent, limit int) []model.ActivityEvent {
	sorted := make([]model.ActivityEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
