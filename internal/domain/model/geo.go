package model

import "github.com/paulmach/orb"

// LatLng 緯度経度を表す基本的な型（クラスタリングや地図表示で使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToPoint LatLngをorb.Point（[経度, 緯度]）に変換
func (l LatLng) ToPoint() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// LatLngFromPoint orb.PointからLatLngを生成
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// GeoRecord クラスタリング対象となる位置情報付きレコード
// クラスタラーはIDと座標以外の属性を参照しない
type GeoRecord interface {
	GetID() string
	ToLatLng() LatLng
}

// Bounds 北南東西で表す境界ボックス
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ToBound Boundsをorb.Boundに変換
func (b Bounds) ToBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// BoundsFromBound orb.BoundからBoundsを生成
func BoundsFromBound(bound orb.Bound) Bounds {
	return Bounds{
		North: bound.Top(),
		South: bound.Bottom(),
		East:  bound.Right(),
		West:  bound.Left(),
	}
}

// BoundsAround 中心点の周囲にpadding度の余白を持つ境界ボックスを作成
func BoundsAround(center LatLng, padding float64) Bounds {
	bound := orb.Bound{Min: center.ToPoint(), Max: center.ToPoint()}
	return BoundsFromBound(bound.Pad(padding))
}

// Region 名前付きの地理的領域
type Region struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Bounds Bounds `json:"bounds"`
}
