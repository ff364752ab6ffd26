package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QualityRadar-App/internal/domain/model"
)

func TestHaversineDistance(t *testing.T) {
	paris := model.LatLng{Lat: 48.8566, Lng: 2.3522}
	lyon := model.LatLng{Lat: 45.7640, Lng: 4.8357}

	assert.InDelta(t, 0, HaversineDistance(paris, paris), 1e-9)
	// パリ〜リヨン間はおよそ392km
	assert.InDelta(t, 392, HaversineDistance(paris, lyon), 5)
	assert.InDelta(t, HaversineDistance(paris, lyon), HaversineDistance(lyon, paris), 1e-9)
}

func TestIsWithinBounds(t *testing.T) {
	bounds := model.Bounds{North: 50, South: 40, East: 10, West: 0}

	tests := []struct {
		name  string
		point model.LatLng
		want  bool
	}{
		{name: "内側", point: model.LatLng{Lat: 45, Lng: 5}, want: true},
		{name: "北端上", point: model.LatLng{Lat: 50, Lng: 5}, want: true},
		{name: "南西の角", point: model.LatLng{Lat: 40, Lng: 0}, want: true},
		{name: "北に外れる", point: model.LatLng{Lat: 50.0001, Lng: 5}, want: false},
		{name: "西に外れる", point: model.LatLng{Lat: 45, Lng: -0.1}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinBounds(tt.point, bounds))
		})
	}
}

func TestBoundsCenter(t *testing.T) {
	center := BoundsCenter(model.Bounds{North: 50, South: 40, East: 10, West: 0})
	assert.InDelta(t, 45, center.Lat, 1e-9)
	assert.InDelta(t, 5, center.Lng, 1e-9)
}

func TestCalculateBounds(t *testing.T) {
	_, err := CalculateBounds(nil)
	assert.ErrorIs(t, err, ErrNoCoordinates)

	bounds, err := CalculateBounds([]model.LatLng{
		{Lat: 46, Lng: 2},
		{Lat: 48.5, Lng: -1},
		{Lat: 44, Lng: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Bounds{North: 48.5, South: 44, East: 6, West: -1}, bounds)

	single, err := CalculateBounds([]model.LatLng{{Lat: 1, Lng: 2}})
	require.NoError(t, err)
	assert.Equal(t, model.Bounds{North: 1, South: 1, East: 2, West: 2}, single)
}

func TestRecordsBounds(t *testing.T) {
	issues := []*model.Issue{
		{ID: "a", Coordinates: model.LatLng{Lat: 1, Lng: 1}},
		{ID: "b", Coordinates: model.LatLng{Lat: 3, Lng: -2}},
	}
	bounds, err := RecordsBounds(issues)
	require.NoError(t, err)
	assert.Equal(t, model.Bounds{North: 3, South: 1, East: 1, West: -2}, bounds)
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidCoordinates(model.LatLng{Lat: -90, Lng: 180}))
	assert.False(t, IsValidCoordinates(model.LatLng{Lat: 91, Lng: 0}))
	assert.False(t, IsValidCoordinates(model.LatLng{Lat: 0, Lng: -180.5}))

	assert.True(t, IsValidWikidataID("Q42"))
	assert.False(t, IsValidWikidataID("q42"))
	assert.False(t, IsValidWikidataID("Q"))
	assert.False(t, IsValidWikidataID("P625"))

	assert.True(t, IsValidOSMID("n2001"))
	assert.True(t, IsValidOSMID("W12"))
	assert.True(t, IsValidOSMID("r9"))
	assert.False(t, IsValidOSMID("x1"))
	assert.False(t, IsValidOSMID("n"))
}

func TestSortByDistanceFromLocation(t *testing.T) {
	origin := model.LatLng{Lat: 0, Lng: 0}
	features := []model.OSMEntity{
		{ID: "w1"},
		{ID: "n-far", Coordinates: &model.LatLng{Lat: 2, Lng: 0}},
		{ID: "n-near", Coordinates: &model.LatLng{Lat: 0.1, Lng: 0}},
	}

	SortByDistanceFromLocation(origin, features)
	assert.Equal(t, "n-near", features[0].ID)
	assert.Equal(t, "n-far", features[1].ID)
	assert.Equal(t, "w1", features[2].ID)
}
