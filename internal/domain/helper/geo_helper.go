package helper

import (
	"errors"
	"regexp"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"QualityRadar-App/internal/domain/model"
)

var (
	wikidataIDPattern = regexp.MustCompile(`^Q\d+$`)
	osmIDPattern      = regexp.MustCompile(`(?i)^[nwr]\d+$`)
)

// ErrNoCoordinates は座標が1つもない場合のエラー
var ErrNoCoordinates = errors.New("座標が指定されていません")

// HaversineDistance は2地点間の距離を計算する (km)
func HaversineDistance(p1, p2 model.LatLng) float64 {
	return geo.DistanceHaversine(p1.ToPoint(), p2.ToPoint()) / 1000
}

// IsWithinBounds は座標が境界ボックス内（境界上を含む）にあるかチェックする
func IsWithinBounds(point model.LatLng, bounds model.Bounds) bool {
	return bounds.ToBound().Contains(point.ToPoint())
}

// BoundsCenter は境界ボックスの中心を返す
func BoundsCenter(bounds model.Bounds) model.LatLng {
	return model.LatLngFromPoint(bounds.ToBound().Center())
}

// CalculateBounds は座標群を囲む最小の境界ボックスを返す
func CalculateBounds(points []model.LatLng) (model.Bounds, error) {
	if len(points) == 0 {
		return model.Bounds{}, ErrNoCoordinates
	}
	bound := orb.Bound{Min: points[0].ToPoint(), Max: points[0].ToPoint()}
	for _, p := range points[1:] {
		bound = bound.Extend(p.ToPoint())
	}
	return model.BoundsFromBound(bound), nil
}

// RecordsBounds はレコード群の境界ボックスを返す
func RecordsBounds[T model.GeoRecord](records []T) (model.Bounds, error) {
	points := make([]model.LatLng, len(records))
	for i, r := range records {
		points[i] = r.ToLatLng()
	}
	return CalculateBounds(points)
}

// IsValidCoordinates は緯度経度が有効範囲内かチェックする
func IsValidCoordinates(point model.LatLng) bool {
	return point.Lat >= -90 && point.Lat <= 90 && point.Lng >= -180 && point.Lng <= 180
}

// IsValidWikidataID は "Q42" 形式のIDかチェックする
func IsValidWikidataID(id string) bool {
	return wikidataIDPattern.MatchString(id)
}

// IsValidOSMID は "n123" / "w123" / "r123" 形式のIDかチェックする（大文字小文字を区別しない）
func IsValidOSMID(id string) bool {
	return osmIDPattern.MatchString(id)
}

// SortByDistanceFromLocation は基準座標からの距離でOSM要素をソートする
// 座標を持たない要素は末尾に回す
func SortByDistanceFromLocation(origin model.LatLng, targets []model.OSMEntity) {
	sort.SliceStable(targets, func(i, j int) bool {
		ci, cj := targets[i].Coordinates, targets[j].Coordinates
		if ci == nil || cj == nil {
			return ci != nil && cj == nil
		}
		return HaversineDistance(origin, *ci) < HaversineDistance(origin, *cj)
	})
}
