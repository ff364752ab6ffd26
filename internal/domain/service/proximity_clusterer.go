package service

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"QualityRadar-App/internal/domain/model"
)

// クラスタ半径の縮小が始まるズームレベル
const radiusShrinkStartZoom = 6

// ProximityClusterer は地図表示用に近接するレコードを貪欲法でまとめる
type ProximityClusterer struct {
	config model.ClusterConfig
}

// NewProximityClusterer は新しいProximityClustererを作成
func NewProximityClusterer(config model.ClusterConfig) *ProximityClusterer {
	return &ProximityClusterer{config: config}
}

// Config は現在の設定を返す
func (p *ProximityClusterer) Config() model.ClusterConfig {
	return p.config
}

// Cluster は指定ズームでのクラスタ一覧を返す
func (p *ProximityClusterer) Cluster(records []model.GeoRecord, zoom int) []model.Cluster {
	return ClusterRecords(records, zoom, p.config)
}

// EffectiveRadius はズームに応じたクラスタ半径（度）
// ズーム6を超えると1段階ごとに半分になる
func EffectiveRadius(config model.ClusterConfig, zoom int) float64 {
	shift := zoom - radiusShrinkStartZoom
	if shift < 0 {
		shift = 0
	}
	return config.BaseRadius / math.Pow(2, float64(shift))
}

// workingCluster はクラスタリング中の途中状態
type workingCluster struct {
	center  orb.Point
	sumLng  float64
	sumLat  float64
	members []model.GeoRecord
}

func newWorkingCluster(record model.GeoRecord, point orb.Point) *workingCluster {
	return &workingCluster{
		center:  point,
		sumLng:  point.Lon(),
		sumLat:  point.Lat(),
		members: []model.GeoRecord{record},
	}
}

// add はメンバーを追加し、重心を全メンバーの平均に更新する
func (w *workingCluster) add(record model.GeoRecord, point orb.Point) {
	w.members = append(w.members, record)
	w.sumLng += point.Lon()
	w.sumLat += point.Lat()
	n := float64(len(w.members))
	w.center = orb.Point{w.sumLng / n, w.sumLat / n}
}

// ClusterRecords は入力順にレコードを走査し、作成順で最初に半径内に入った
// クラスタへ割り当てる。どこにも入らなければ新しいクラスタを作る。
// 距離は度単位の平面ユークリッド距離。結果は順序依存で、メンバーが
// 2件以上のクラスタのみを作成順に返す。zoom >= MaxZoom では常に空。
func ClusterRecords(records []model.GeoRecord, zoom int, config model.ClusterConfig) []model.Cluster {
	result := []model.Cluster{}
	if zoom >= config.MaxZoom {
		return result
	}

	radius := EffectiveRadius(config, zoom)
	var working []*workingCluster

	for _, record := range records {
		point := record.ToLatLng().ToPoint()

		var target *workingCluster
		for _, c := range working {
			if planar.Distance(point, c.center) < radius {
				target = c
				break
			}
		}

		if target != nil {
			target.add(record, point)
		} else {
			working = append(working, newWorkingCluster(record, point))
		}
	}

	for _, c := range working {
		if len(c.members) < 2 {
			continue
		}
		result = append(result, model.Cluster{
			Center:  model.LatLngFromPoint(c.center),
			Members: c.members,
		})
	}
	return result
}

// Unclustered はどのクラスタにも含まれないレコードを入力順で返す
func Unclustered(records []model.GeoRecord, clusters []model.Cluster) []model.GeoRecord {
	clustered := make(map[string]struct{})
	for _, c := range clusters {
		for _, m := range c.Members {
			clustered[m.GetID()] = struct{}{}
		}
	}

	result := make([]model.GeoRecord, 0, len(records))
	for _, r := range records {
		if _, ok := clustered[r.GetID()]; !ok {
			result = append(result, r)
		}
	}
	return result
}
