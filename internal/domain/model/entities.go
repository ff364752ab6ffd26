package model

import (
	"encoding/json"
	"time"
)

// WikidataEntity Wikidataエンティティのデータ
type WikidataEntity struct {
	ID          string                     `json:"id"`
	Label       string                     `json:"label"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]json.RawMessage `json:"properties"` // claimsをそのまま保持
	Coordinates *LatLng                    `json:"coordinates,omitempty"`
	Aliases     []string                   `json:"aliases,omitempty"`
}

// OSMElementType OSM要素の種類
type OSMElementType string

const (
	OSMNode     OSMElementType = "node"
	OSMWay      OSMElementType = "way"
	OSMRelation OSMElementType = "relation"
)

// OSMEntity OpenStreetMap要素のデータ
type OSMEntity struct {
	ID          string            `json:"id"` // 種類の頭文字 + 数値ID（例: n123）
	Type        OSMElementType    `json:"type"`
	Tags        map[string]string `json:"tags"`
	Coordinates *LatLng           `json:"coordinates,omitempty"`
	Version     int               `json:"version,omitempty"`
	Timestamp   *time.Time        `json:"timestamp,omitempty"`
}
