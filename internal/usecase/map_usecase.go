package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
	"QualityRadar-App/internal/domain/service"
	"QualityRadar-App/internal/infrastructure/metrics"
)

type MapUseCase interface {
	// Clusters はフィルタ後の問題を指定ズームでクラスタリングし、残りを個別マーカーとして返す
	Clusters(ctx context.Context, filters model.FilterState, zoom int) (*model.MapClustersResponse, error)
}

// mapUseCaseImpl はMapUseCaseの実装
type mapUseCaseImpl struct {
	issuesRepo    repository.IssuesRepository
	clusterer     *service.ProximityClusterer
	metrics       *metrics.Metrics
	defaultCenter model.LatLng
}

// NewMapUseCase は新しいMapUseCaseインスタンスを作成
func NewMapUseCase(
	issuesRepo repository.IssuesRepository,
	clusterer *service.ProximityClusterer,
	m *metrics.Metrics,
	defaultCenter model.LatLng,
) MapUseCase {
	return &mapUseCaseImpl{
		issuesRepo:    issuesRepo,
		clusterer:     clusterer,
		metrics:       m,
		defaultCenter: defaultCenter,
	}
}

func (u *mapUseCaseImpl) Clusters(ctx context.Context, filters model.FilterState, zoom int) (*model.MapClustersResponse, error) {
	all, err := u.issuesRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("問題一覧の取得に失敗: %w", err)
	}
	issues := service.FilterIssues(all, filters)

	records := make([]model.GeoRecord, len(issues))
	for i, issue := range issues {
		records[i] = issue
	}

	start := time.Now()
	clusters := u.clusterer.Cluster(records, zoom)
	u.metrics.ObserveClustering(start, len(clusters))

	rest := service.Unclustered(records, clusters)
	markers := make([]*model.Issue, 0, len(rest))
	for _, r := range rest {
		if issue, ok := r.(*model.Issue); ok {
			markers = append(markers, issue)
		}
	}

	response := &model.MapClustersResponse{
		Zoom:     zoom,
		Clusters: clusters,
		Markers:  markers,
	}
	if bounds, err := helper.RecordsBounds(issues); err == nil {
		center := helper.BoundsCenter(bounds)
		response.Bounds = &bounds
		response.Center = &center
	} else {
		center := u.defaultCenter
		response.Center = &center
	}

	log.Printf("🗺️ クラスタリング完了 (ズーム: %d, 問題: %d件, クラスタ: %d, マーカー: %d)",
		zoom, len(issues), len(clusters), len(markers))
	return response, nil
}
