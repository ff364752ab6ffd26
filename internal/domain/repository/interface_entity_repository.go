package repository

import (
	"context"

	"QualityRadar-App/internal/domain/model"
)

// EntityRepository はWikidataエンティティの取得・検索の責務を持つリポジトリインターフェース
type EntityRepository interface {
	// FetchEntity は存在しないIDに対して nil, nil を返す
	FetchEntity(ctx context.Context, id string) (*model.WikidataEntity, error)
	SearchEntities(ctx context.Context, query string, limit int) ([]model.WikidataEntity, error)
}

// FeatureRepository はOpenStreetMap要素の範囲検索の責務を持つリポジトリインターフェース
type FeatureRepository interface {
	QueryFeatures(ctx context.Context, bounds model.Bounds, tags map[string]string) ([]model.OSMEntity, error)
}

// ResponseCache は外部APIレスポンスキャッシュの管理操作
type ResponseCache interface {
	Clear()
	Len() int
}
