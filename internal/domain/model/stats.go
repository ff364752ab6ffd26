package model

import "time"

// TrendDirection 傾向の向き
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Trend 直近の問題数の変化率
type Trend struct {
	Value     float64        `json:"value"` // 変化率（%）
	Direction TrendDirection `json:"direction"`
}

// DashboardStats ダッシュボードの統計情報
type DashboardStats struct {
	TotalIssues          int               `json:"total_issues"`
	TotalChecked         int               `json:"total_checked"`
	AccuracyScore        int               `json:"accuracy_score"`
	IssueDistribution    map[IssueType]int `json:"issue_distribution"`
	SeverityDistribution map[Severity]int  `json:"severity_distribution"`
	RegionStats          map[string]int    `json:"region_stats"`
	Trend                Trend             `json:"trend"`
}

// ActivityType タイムラインイベントの種類
type ActivityType string

const (
	ActivityIssueDetected   ActivityType = "issue_detected"
	ActivityIssueResolved   ActivityType = "issue_resolved"
	ActivityDataUpdated     ActivityType = "data_updated"
	ActivityExportGenerated ActivityType = "export_generated"
)

// ActivityEvent アクティビティタイムラインのイベント
type ActivityEvent struct {
	ID          string         `json:"id"`
	Type        ActivityType   `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
