package model

// ClusterConfig 近接クラスタリングの設定
type ClusterConfig struct {
	BaseRadius float64 `json:"base_radius"` // ズーム6以下でのクラスタ半径（度）
	MaxZoom    int     `json:"max_zoom"`    // このズーム以上ではクラスタリングしない
}

// Cluster 地図上でまとめて表示するレコードの集合
// Centerは常にMembersの座標の算術平均
type Cluster struct {
	Center  LatLng      `json:"center"`
	Members []GeoRecord `json:"members"`
}

// Size クラスタのメンバー数
func (c Cluster) Size() int {
	return len(c.Members)
}

// MapClustersResponse 地図APIのレスポンス
type MapClustersResponse struct {
	Zoom     int       `json:"zoom"`
	Clusters []Cluster `json:"clusters"`
	Markers  []*Issue  `json:"markers"` // どのクラスタにも属さない問題
	Bounds   *Bounds   `json:"bounds,omitempty"`
	Center   *LatLng   `json:"center,omitempty"`
}
