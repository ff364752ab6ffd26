package model

import "time"

// IssueType データ品質問題の種別
type IssueType string

// Severity 問題の深刻度
type Severity string

// Issue Wikidata / OpenStreetMap間で検出されたデータ品質問題を表すモデル
type Issue struct {
	ID          string         `json:"id"`                    // ユニークな問題ID
	Type        IssueType      `json:"type"`                  // 問題の種別
	Severity    Severity       `json:"severity"`              // 深刻度
	Confidence  int            `json:"confidence"`            // 信頼度（0-100）
	Coordinates LatLng         `json:"coordinates"`           // 位置情報
	Region      string         `json:"region,omitempty"`      // 地域名
	WikidataID  string         `json:"wikidata_id,omitempty"` // 関連するWikidataエンティティID（例: Q90）
	OSMID       string         `json:"osm_id,omitempty"`      // 関連するOSM要素ID（例: n123）
	Description string         `json:"description"`           // 問題の説明
	Suggestion  string         `json:"suggestion,omitempty"`  // 修正提案
	DetectedAt  time.Time      `json:"detected_at"`           // 検出日時
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"` // 解決日時（NULLABLE）
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// GetID GeoRecordの実装
func (i *Issue) GetID() string {
	return i.ID
}

// ToLatLng GeoRecordの実装
func (i *Issue) ToLatLng() LatLng {
	return i.Coordinates
}

// HasWikidataID Wikidata IDが設定されているかチェック
func (i *Issue) HasWikidataID() bool {
	return i.WikidataID != ""
}

// HasOSMID OSM IDが設定されているかチェック
func (i *Issue) HasOSMID() bool {
	return i.OSMID != ""
}

// IsResolved 解決済みかどうか
func (i *Issue) IsResolved() bool {
	return i.ResolvedAt != nil
}

// IssueCreateRequest 問題登録APIのリクエスト。IDが空ならサーバー側で採番する
type IssueCreateRequest struct {
	ID          string         `json:"id,omitempty"`
	Type        IssueType      `json:"type" binding:"required"`
	Severity    Severity       `json:"severity" binding:"required"`
	Confidence  int            `json:"confidence"`
	Coordinates LatLng         `json:"coordinates"`
	Region      string         `json:"region,omitempty"`
	WikidataID  string         `json:"wikidata_id,omitempty"`
	OSMID       string         `json:"osm_id,omitempty"`
	Description string         `json:"description" binding:"required"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToIssue リクエストから未解決の問題を作る
func (r IssueCreateRequest) ToIssue() *Issue {
	return &Issue{
		ID:          r.ID,
		Type:        r.Type,
		Severity:    r.Severity,
		Confidence:  r.Confidence,
		Coordinates: r.Coordinates,
		Region:      r.Region,
		WikidataID:  r.WikidataID,
		OSMID:       r.OSMID,
		Description: r.Description,
		Suggestion:  r.Suggestion,
		Metadata:    r.Metadata,
	}
}

// IssuePatch 問題の部分更新。nilの項目は変更しない
type IssuePatch struct {
	Severity    *Severity `json:"severity"`
	Confidence  *int      `json:"confidence"`
	Description *string   `json:"description"`
	Suggestion  *string   `json:"suggestion"`
	Resolved    *bool     `json:"resolved"`
}

// IsEmpty 変更する項目がひとつもないか
func (p IssuePatch) IsEmpty() bool {
	return p.Severity == nil && p.Confidence == nil && p.Description == nil && p.Suggestion == nil && p.Resolved == nil
}

// Apply はnilでない項目を問題に反映する
// Resolved=trueで未解決ならResolvedAtをnowにし、falseならResolvedAtを消す
func (p IssuePatch) Apply(issue *Issue, now time.Time) {
	if p.Severity != nil {
		issue.Severity = *p.Severity
	}
	if p.Confidence != nil {
		issue.Confidence = *p.Confidence
	}
	if p.Description != nil {
		issue.Description = *p.Description
	}
	if p.Suggestion != nil {
		issue.Suggestion = *p.Suggestion
	}
	if p.Resolved != nil {
		switch {
		case *p.Resolved && issue.ResolvedAt == nil:
			resolvedAt := now
			issue.ResolvedAt = &resolvedAt
		case !*p.Resolved:
			issue.ResolvedAt = nil
		}
	}
}

// IssueListResponse 問題一覧APIのレスポンス
type IssueListResponse struct {
	Issues     []*Issue         `json:"issues"`
	Pagination PaginationParams `json:"pagination"`
	Selected   []string         `json:"selected"`
}

// PaginationParams ページネーション情報
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// IssueDetail 詳細パネル用のデータ
type IssueDetail struct {
	Issue              *Issue          `json:"issue"`
	Wikidata           *WikidataEntity `json:"wikidata,omitempty"`
	OSM                *OSMEntity      `json:"osm,omitempty"`
	NearbyFeatureCount int             `json:"nearby_feature_count"`
	WikidataDistanceKm *float64        `json:"wikidata_distance_km,omitempty"` // 問題位置とWikidata座標の距離
}
