package repository

import (
	"fmt"
	"math/rand"
	"time"

	"QualityRadar-App/internal/domain/model"
)

// MockCenter モックデータの中心（フランス本土の中心付近）
var MockCenter = model.LatLng{Lat: 46.2276, Lng: 2.2137}

// 中心からの散らばり幅（度）
const mockSpread = 5.0

// MockRegions はモックデータで使う地域名
var MockRegions = []string{
	"Île-de-France",
	"Auvergne-Rhône-Alpes",
	"Provence-Alpes-Côte d'Azur",
}

var mockIssueTypes = []model.IssueType{
	model.IssueMissingProperty,
	model.IssueIncorrectValue,
	model.IssueFormatError,
	model.IssueDuplicate,
	model.IssueOutdated,
}

var mockActivityTypes = []model.ActivityType{
	model.ActivityIssueDetected,
	model.ActivityIssueResolved,
	model.ActivityDataUpdated,
	model.ActivityExportGenerated,
}

// GenerateMockIssues はデモ用の問題をn件生成する
// 座標と検出日時以外はインデックスから決まり、座標と検出日時はrngに依存する
func GenerateMockIssues(n int, rng *rand.Rand, now time.Time) []*model.Issue {
	severities := model.GetAllSeverities()
	issues := make([]*model.Issue, 0, n)

	for i := 0; i < n; i++ {
		issue := &model.Issue{
			ID:         fmt.Sprintf("issue-%d", i+1),
			Type:       mockIssueTypes[i%len(mockIssueTypes)],
			Severity:   severities[i%len(severities)],
			Confidence: 60 + i%40,
			Coordinates: model.LatLng{
				Lat: MockCenter.Lat + (rng.Float64()-0.5)*mockSpread,
				Lng: MockCenter.Lng + (rng.Float64()-0.5)*mockSpread,
			},
			Region:      MockRegions[i%len(MockRegions)],
			Description: fmt.Sprintf("Problème détecté #%d: Description du problème de qualité des données", i+1),
			DetectedAt:  now.Add(-time.Duration(rng.Float64() * float64(7*24*time.Hour))),
			Metadata:    map[string]any{},
		}
		if i%3 == 0 {
			issue.WikidataID = fmt.Sprintf("Q%d", 1000+i)
		}
		if i%2 == 0 {
			issue.OSMID = fmt.Sprintf("n%d", 2000+i)
			issue.Suggestion = "Suggestion de correction"
		}
		issues = append(issues, issue)
	}
	return issues
}

// GenerateMockEvents はタイムライン用のイベントをn件生成する（1時間おき、新しい順）
func GenerateMockEvents(n int, now time.Time) []model.ActivityEvent {
	events := make([]model.ActivityEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, model.ActivityEvent{
			ID:          fmt.Sprintf("event-%d", i+1),
			Type:        mockActivityTypes[i%len(mockActivityTypes)],
			Timestamp:   now.Add(-time.Duration(i) * time.Hour),
			Description: fmt.Sprintf("Événement %d: Description de l'activité", i+1),
		})
	}
	return events
}
