package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
	"QualityRadar-App/internal/domain/service"
	"QualityRadar-App/internal/infrastructure/metrics"
	repoImpl "QualityRadar-App/internal/repository"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeEntityRepo struct {
	mu       sync.Mutex
	entities map[string]*model.WikidataEntity
	err      error
	calls    []string
}

func (f *fakeEntityRepo) FetchEntity(ctx context.Context, id string) (*model.WikidataEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.entities[id], nil
}

func (f *fakeEntityRepo) SearchEntities(ctx context.Context, query string, limit int) ([]model.WikidataEntity, error) {
	return nil, f.err
}

type fakeFeatureRepo struct {
	mu       sync.Mutex
	features []model.OSMEntity
	err      error
	bounds   []model.Bounds
}

func (f *fakeFeatureRepo) QueryFeatures(ctx context.Context, bounds model.Bounds, tags map[string]string) ([]model.OSMEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bounds = append(f.bounds, bounds)
	return f.features, f.err
}

func testIssues() []*model.Issue {
	return []*model.Issue{
		{
			ID: "issue-1", Type: model.IssueMissingProperty, Severity: model.SeverityHigh, Confidence: 90,
			Coordinates: model.LatLng{Lat: 48.8584, Lng: 2.2945}, WikidataID: "Q243", OSMID: "n2001",
			Description: "Tour Eiffel", DetectedAt: testNow.Add(-time.Hour),
		},
		{
			ID: "issue-2", Type: model.IssueDuplicate, Severity: model.SeverityLow, Confidence: 70,
			Coordinates: model.LatLng{Lat: 48.8585, Lng: 2.2946}, Description: "Doublon", DetectedAt: testNow.Add(-30 * time.Hour),
		},
		{
			ID: "issue-3", Type: model.IssueOutdated, Severity: model.SeverityCritical, Confidence: 65,
			Coordinates: model.LatLng{Lat: 43.2965, Lng: 5.3698}, WikidataID: "Q23482", Description: "Marseille", DetectedAt: testNow.Add(-2 * time.Hour),
		},
	}
}

func TestIssueDetailUseCase_Detail(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	entities := &fakeEntityRepo{entities: map[string]*model.WikidataEntity{
		"Q243": {ID: "Q243", Label: "tour Eiffel", Coordinates: &model.LatLng{Lat: 48.8584, Lng: 2.2945}},
	}}
	features := &fakeFeatureRepo{features: []model.OSMEntity{
		{ID: "n9999", Type: model.OSMNode, Coordinates: &model.LatLng{Lat: 48.8584, Lng: 2.2945}},
		{ID: "n2001", Type: model.OSMNode, Coordinates: &model.LatLng{Lat: 48.8590, Lng: 2.2950}},
	}}
	uc := NewIssueDetailUseCase(issues, entities, features)

	detail, err := uc.Detail(ctx, "issue-1")
	require.NoError(t, err)
	assert.Equal(t, "issue-1", detail.Issue.ID)
	require.NotNil(t, detail.Wikidata)
	assert.Equal(t, "tour Eiffel", detail.Wikidata.Label)
	require.NotNil(t, detail.WikidataDistanceKm)
	assert.InDelta(t, 0, *detail.WikidataDistanceKm, 1e-9)
	require.NotNil(t, detail.OSM)
	assert.Equal(t, "n2001", detail.OSM.ID, "IDが一致する要素を優先")
	assert.Equal(t, 2, detail.NearbyFeatureCount)

	require.Len(t, features.bounds, 1)
	b := features.bounds[0]
	assert.InDelta(t, 48.8594, b.North, 1e-9)
	assert.InDelta(t, 48.8574, b.South, 1e-9)
	assert.InDelta(t, 2.2955, b.East, 1e-9)
	assert.InDelta(t, 2.2935, b.West, 1e-9)
}

func TestIssueDetailUseCase_NearestFeatureWhenIDNotFound(t *testing.T) {
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	features := &fakeFeatureRepo{features: []model.OSMEntity{
		{ID: "w1", Type: model.OSMWay},
		{ID: "n2", Coordinates: &model.LatLng{Lat: 48.8594, Lng: 2.2945}},
		{ID: "n3", Coordinates: &model.LatLng{Lat: 48.8585, Lng: 2.2945}},
	}}
	uc := NewIssueDetailUseCase(issues, &fakeEntityRepo{}, features)

	detail, err := uc.Detail(context.Background(), "issue-1")
	require.NoError(t, err)
	require.NotNil(t, detail.OSM)
	assert.Equal(t, "n3", detail.OSM.ID)
	assert.Nil(t, detail.Wikidata, "存在しないエンティティ")
	assert.Nil(t, detail.WikidataDistanceKm)
}

func TestIssueDetailUseCase_UpstreamFailuresDegrade(t *testing.T) {
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	entities := &fakeEntityRepo{err: errors.New("wikidata down")}
	features := &fakeFeatureRepo{err: errors.New("overpass down")}
	uc := NewIssueDetailUseCase(issues, entities, features)

	detail, err := uc.Detail(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Nil(t, detail.Wikidata)
	assert.Nil(t, detail.OSM)
	assert.Equal(t, 0, detail.NearbyFeatureCount)
}

func TestIssueDetailUseCase_SkipsLookupsWithoutIDs(t *testing.T) {
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	entities := &fakeEntityRepo{}
	features := &fakeFeatureRepo{}
	uc := NewIssueDetailUseCase(issues, entities, features)

	_, err := uc.Detail(context.Background(), "issue-2")
	require.NoError(t, err)
	assert.Empty(t, entities.calls)
	assert.Empty(t, features.bounds)

	_, err = uc.Detail(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrIssueNotFound)
}

func TestIssueDetailUseCase_MalformedOSMIDSkipsOverpass(t *testing.T) {
	issues := repoImpl.NewMemoryIssuesRepository([]*model.Issue{{
		ID: "issue-x", Type: model.IssueGeospatialError, Severity: model.SeverityMedium,
		Coordinates: model.LatLng{Lat: 48.8584, Lng: 2.2945}, OSMID: "node/2001",
	}})
	features := &fakeFeatureRepo{features: []model.OSMEntity{{ID: "n2001"}}}
	uc := NewIssueDetailUseCase(issues, &fakeEntityRepo{}, features)

	detail, err := uc.Detail(context.Background(), "issue-x")
	require.NoError(t, err)
	assert.Empty(t, features.bounds, "Overpassに問い合わせない")
	assert.Nil(t, detail.OSM)
	assert.Equal(t, 0, detail.NearbyFeatureCount)
}

func TestMapUseCase_Clusters(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	clusterer := service.NewProximityClusterer(model.ClusterConfig{BaseRadius: 1, MaxZoom: 14})
	m := metrics.NewMetrics("test")
	uc := NewMapUseCase(issues, clusterer, m, model.LatLng{Lat: 46.2276, Lng: 2.2137})

	resp, err := uc.Clusters(ctx, model.DefaultFilters(), 6)
	require.NoError(t, err)
	require.Len(t, resp.Clusters, 1)
	assert.Equal(t, 2, resp.Clusters[0].Size())
	require.Len(t, resp.Markers, 1)
	assert.Equal(t, "issue-3", resp.Markers[0].ID)
	require.NotNil(t, resp.Bounds)
	assert.InDelta(t, 48.8585, resp.Bounds.North, 1e-9)
	assert.InDelta(t, 43.2965, resp.Bounds.South, 1e-9)

	// 最大ズームでは全件が個別マーカー
	resp, err = uc.Clusters(ctx, model.DefaultFilters(), 14)
	require.NoError(t, err)
	assert.Empty(t, resp.Clusters)
	assert.Len(t, resp.Markers, 3)
}

func TestMapUseCase_EmptyResultUsesDefaultCenter(t *testing.T) {
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	clusterer := service.NewProximityClusterer(model.ClusterConfig{BaseRadius: 1, MaxZoom: 14})
	center := model.LatLng{Lat: 46.2276, Lng: 2.2137}
	uc := NewMapUseCase(issues, clusterer, nil, center)

	resp, err := uc.Clusters(context.Background(), model.FilterState{SearchQuery: "introuvable"}, 6)
	require.NoError(t, err)
	assert.Empty(t, resp.Clusters)
	assert.Empty(t, resp.Markers)
	assert.Nil(t, resp.Bounds)
	assert.Equal(t, &center, resp.Center)
}

func TestIssueUseCase_List(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	uc := NewIssueUseCase(issues, repoImpl.NewMemoryActivityRepository(nil), 1250, 2)

	resp, err := uc.List(ctx, IssueQuery{Page: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Issues, 2, "デフォルトのページサイズ")
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Empty(t, resp.Selected)

	_, err = uc.ToggleSelection(ctx, "issue-3")
	require.NoError(t, err)

	resp, err = uc.List(ctx, IssueQuery{
		Filters:  model.FilterState{ConfidenceMin: 66},
		Sort:     service.SortOrder{Field: service.SortByConfidence},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, "issue-2", resp.Issues[0].ID)
	assert.Equal(t, []string{"issue-3"}, resp.Selected)
}

func TestIssueUseCase_SelectionAndRemove(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	uc := NewIssueUseCase(issues, repoImpl.NewMemoryActivityRepository(nil), 1250, 50)

	all, err := uc.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, uc.Remove(ctx, "issue-1"))
	resp, err := uc.List(ctx, IssueQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"issue-2", "issue-3"}, resp.Selected)

	assert.ErrorIs(t, uc.Remove(ctx, "issue-1"), repository.ErrIssueNotFound)

	_, err = uc.ToggleSelection(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrIssueNotFound)

	require.NoError(t, uc.ClearSelection(ctx))
	resp, _ = uc.List(ctx, IssueQuery{})
	assert.Empty(t, resp.Selected)
}

func TestIssueUseCase_StatsAndTimeline(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	activity := repoImpl.NewMemoryActivityRepository(repoImpl.GenerateMockEvents(5, testNow))
	uc := NewIssueUseCase(issues, activity, 1250, 50)
	uc.(*issueUseCaseImpl).now = func() time.Time { return testNow }

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalIssues)
	assert.Equal(t, 1250, stats.TotalChecked)
	// 直近24時間: 2件, その前: 1件
	assert.Equal(t, model.TrendUp, stats.Trend.Direction)

	events, err := uc.Timeline(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "event-1", events[0].ID)
}

func TestExportUseCase_Export(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	activity := repoImpl.NewMemoryActivityRepository(nil)
	m := metrics.NewMetrics("test")
	uc := NewExportUseCase(issues, activity, service.NewExportService(), m)
	uc.(*exportUseCaseImpl).now = func() time.Time { return testNow }

	result, err := uc.Export(ctx, model.ExportQuickStatements, model.DefaultFilters())
	require.NoError(t, err)
	assert.Equal(t, "issues.txt", result.FileName)
	assert.Equal(t, 2, result.IssueCount)

	// フィルタが適用される
	result, err = uc.Export(ctx, model.ExportCSV, model.FilterState{Severities: []model.Severity{model.SeverityLow}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.IssueCount)

	// 選択があればフィルタより優先
	_, err = issues.ToggleSelection(ctx, "issue-1")
	require.NoError(t, err)
	result, err = uc.Export(ctx, model.ExportJSON, model.FilterState{Severities: []model.Severity{model.SeverityLow}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.IssueCount)
	assert.Contains(t, string(result.Content), "issue-1")

	events, err := activity.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.ActivityExportGenerated, events[2].Type)
	assert.Equal(t, testNow, events[2].Timestamp)
}

func TestIssueUseCase_Create(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	activity := repoImpl.NewMemoryActivityRepository(nil)
	uc := NewIssueUseCase(issues, activity, 1250, 50)
	uc.(*issueUseCaseImpl).now = func() time.Time { return testNow }

	created, err := uc.Create(ctx, &model.Issue{
		Type: model.IssueMissingProperty, Severity: model.SeverityMedium, Confidence: 80,
		Coordinates: model.LatLng{Lat: 45.7640, Lng: 4.8357}, Description: "Population manquante",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "IDが採番される")
	assert.Equal(t, testNow, created.DetectedAt)

	stored, err := issues.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Population manquante", stored.Description)

	events, err := activity.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActivityIssueDetected, events[0].Type)
	assert.Equal(t, created.ID, events[0].Metadata["issue_id"])

	_, err = uc.Create(ctx, &model.Issue{ID: "issue-1", Type: model.IssueDuplicate, Severity: model.SeverityLow})
	assert.ErrorIs(t, err, repository.ErrIssueAlreadyExists)
	events, _ = activity.GetAll(ctx)
	assert.Len(t, events, 1, "失敗した登録は記録しない")
}

func TestIssueUseCase_Update(t *testing.T) {
	ctx := context.Background()
	issues := repoImpl.NewMemoryIssuesRepository(testIssues())
	activity := repoImpl.NewMemoryActivityRepository(nil)
	uc := NewIssueUseCase(issues, activity, 1250, 50)
	uc.(*issueUseCaseImpl).now = func() time.Time { return testNow }

	severity := model.SeverityCritical
	confidence := 95
	updated, err := uc.Update(ctx, "issue-2", model.IssuePatch{Severity: &severity, Confidence: &confidence})
	require.NoError(t, err)
	assert.Equal(t, model.SeverityCritical, updated.Severity)
	assert.Equal(t, 95, updated.Confidence)
	assert.Equal(t, "Doublon", updated.Description, "指定していない項目は変わらない")
	assert.False(t, updated.IsResolved())

	resolved := true
	updated, err = uc.Update(ctx, "issue-2", model.IssuePatch{Resolved: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, testNow, *updated.ResolvedAt)

	// 解決済みを再度解決しても日時もイベントも増えない
	uc.(*issueUseCaseImpl).now = func() time.Time { return testNow.Add(time.Hour) }
	updated, err = uc.Update(ctx, "issue-2", model.IssuePatch{Resolved: &resolved})
	require.NoError(t, err)
	assert.Equal(t, testNow, *updated.ResolvedAt)

	events, err := activity.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActivityIssueResolved, events[0].Type)

	reopened := false
	updated, err = uc.Update(ctx, "issue-2", model.IssuePatch{Resolved: &reopened})
	require.NoError(t, err)
	assert.Nil(t, updated.ResolvedAt)

	_, err = uc.Update(ctx, "missing", model.IssuePatch{Resolved: &resolved})
	assert.ErrorIs(t, err, repository.ErrIssueNotFound)
}
