package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QualityRadar-App/internal/domain/model"
)

var testClusterConfig = model.ClusterConfig{BaseRadius: 1.0, MaxZoom: 14}

func issueAt(id string, lat, lng float64) *model.Issue {
	return &model.Issue{ID: id, Coordinates: model.LatLng{Lat: lat, Lng: lng}}
}

func records(issues ...*model.Issue) []model.GeoRecord {
	result := make([]model.GeoRecord, len(issues))
	for i, issue := range issues {
		result[i] = issue
	}
	return result
}

func memberIDs(c model.Cluster) []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.GetID()
	}
	return ids
}

func assertCenterIsMean(t *testing.T, c model.Cluster) {
	t.Helper()
	var sumLat, sumLng float64
	for _, m := range c.Members {
		sumLat += m.ToLatLng().Lat
		sumLng += m.ToLatLng().Lng
	}
	n := float64(len(c.Members))
	assert.InDelta(t, sumLat/n, c.Center.Lat, 1e-12)
	assert.InDelta(t, sumLng/n, c.Center.Lng, 1e-12)
}

func TestEffectiveRadius(t *testing.T) {
	cfg := model.ClusterConfig{BaseRadius: 50, MaxZoom: 14}

	tests := []struct {
		zoom int
		want float64
	}{
		{zoom: 0, want: 50},
		{zoom: 6, want: 50},
		{zoom: 7, want: 25},
		{zoom: 8, want: 12.5},
		{zoom: 13, want: 50.0 / 128},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("zoom=%d", tt.zoom), func(t *testing.T) {
			assert.InDelta(t, tt.want, EffectiveRadius(cfg, tt.zoom), 1e-12)
		})
	}
}

func TestClusterRecords_HighZoom(t *testing.T) {
	input := records(issueAt("a", 0, 0), issueAt("b", 0, 0), issueAt("c", 0, 0))

	assert.Empty(t, ClusterRecords(input, testClusterConfig.MaxZoom, testClusterConfig))
	assert.Empty(t, ClusterRecords(input, testClusterConfig.MaxZoom+3, testClusterConfig))
	assert.Len(t, ClusterRecords(input, testClusterConfig.MaxZoom-1, testClusterConfig), 1)
}

func TestClusterRecords_EmptyAndSingleton(t *testing.T) {
	t.Run("空入力", func(t *testing.T) {
		result := ClusterRecords(nil, 0, testClusterConfig)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("1件だけではクラスタにならない", func(t *testing.T) {
		assert.Empty(t, ClusterRecords(records(issueAt("a", 46, 2)), 0, testClusterConfig))
	})

	t.Run("離れたレコードは個別マーカー", func(t *testing.T) {
		input := records(issueAt("a", 0, 0), issueAt("b", 10, 10))
		assert.Empty(t, ClusterRecords(input, 6, testClusterConfig))
	})
}

func TestClusterRecords_CoincidentPoints(t *testing.T) {
	input := records(
		issueAt("a", 48.8566, 2.3522),
		issueAt("b", 48.8566, 2.3522),
		issueAt("c", 48.8566, 2.3522),
		issueAt("d", 48.8566, 2.3522),
	)

	result := ClusterRecords(input, 10, testClusterConfig)
	require.Len(t, result, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, memberIDs(result[0]))
	assert.InDelta(t, 48.8566, result[0].Center.Lat, 1e-9)
	assert.InDelta(t, 2.3522, result[0].Center.Lng, 1e-9)
}

func TestClusterRecords_CentroidAfterEachAssignment(t *testing.T) {
	input := records(
		issueAt("a", 0.0, 0.0),
		issueAt("b", 0.3, 0.1),
		issueAt("c", 5.0, 5.0),
		issueAt("d", -0.2, 0.4),
		issueAt("e", 5.1, 4.8),
		issueAt("f", 0.1, -0.3),
	)

	// 入力の各プレフィックスで重心が平均と一致することを確認する
	for n := 1; n <= len(input); n++ {
		for _, c := range ClusterRecords(input[:n], 6, testClusterConfig) {
			assertCenterIsMean(t, c)
		}
	}

	result := ClusterRecords(input, 6, testClusterConfig)
	require.Len(t, result, 2)
	assert.Equal(t, []string{"a", "b", "d", "f"}, memberIDs(result[0]))
	assert.Equal(t, []string{"c", "e"}, memberIDs(result[1]))
}

func TestClusterRecords_OrderSensitivity(t *testing.T) {
	a := issueAt("a", 0, 0)
	b := issueAt("b", 0.9, 0)
	c := issueAt("c", 1.4, 0)

	t.Run("Bの合流で重心が動きCが入れる", func(t *testing.T) {
		result := ClusterRecords(records(a, b, c), 6, testClusterConfig)
		require.Len(t, result, 1)
		assert.Equal(t, []string{"a", "b", "c"}, memberIDs(result[0]))
		assertCenterIsMean(t, result[0])
	})

	t.Run("Cが先に来るとAのクラスタに入れない", func(t *testing.T) {
		result := ClusterRecords(records(a, c, b), 6, testClusterConfig)
		require.Len(t, result, 1)
		assert.Equal(t, []string{"a", "b"}, memberIDs(result[0]))
	})
}

func TestClusterRecords_FirstMatchWins(t *testing.T) {
	// xは両方のクラスタの半径内だが、先に作られたクラスタに入る
	input := records(
		issueAt("left", 0, -0.6),
		issueAt("right", 0, 0.6),
		issueAt("x", 0, 0.05),
	)

	result := ClusterRecords(input, 6, testClusterConfig)
	require.Len(t, result, 1)
	assert.Equal(t, []string{"left", "x"}, memberIDs(result[0]))
}

func TestClusterRecords_RadiusIsStrict(t *testing.T) {
	// 半径ちょうどの距離は含まれない
	input := records(issueAt("a", 0, 0), issueAt("b", 0, 1.0))
	assert.Empty(t, ClusterRecords(input, 6, testClusterConfig))

	// ズーム7では半径0.5
	input = records(issueAt("a", 0, 0), issueAt("b", 0, 0.6))
	assert.Len(t, ClusterRecords(input, 6, testClusterConfig), 1)
	assert.Empty(t, ClusterRecords(input, 7, testClusterConfig))
}

func TestUnclustered(t *testing.T) {
	input := records(
		issueAt("a", 0, 0),
		issueAt("lonely", 20, 20),
		issueAt("b", 0.1, 0.1),
		issueAt("far", -20, -20),
	)

	clusters := ClusterRecords(input, 6, testClusterConfig)
	rest := Unclustered(input, clusters)

	ids := make([]string, len(rest))
	for i, r := range rest {
		ids[i] = r.GetID()
	}
	assert.Equal(t, []string{"lonely", "far"}, ids)
}

func TestProximityClusterer(t *testing.T) {
	clusterer := NewProximityClusterer(testClusterConfig)
	assert.Equal(t, testClusterConfig, clusterer.Config())

	input := records(issueAt("a", 1, 1), issueAt("b", 1, 1))
	assert.Len(t, clusterer.Cluster(input, 3), 1)
	assert.Empty(t, clusterer.Cluster(input, 14))
}
