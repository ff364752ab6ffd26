package main

import (
	"log"
	"math/rand"
	"time"

	"QualityRadar-App/internal/config"
	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/service"
	"QualityRadar-App/internal/handler"
	"QualityRadar-App/internal/infrastructure/cache"
	"QualityRadar-App/internal/infrastructure/metrics"
	"QualityRadar-App/internal/infrastructure/overpass"
	"QualityRadar-App/internal/infrastructure/wikidata"
	"QualityRadar-App/internal/repository"
	"QualityRadar-App/internal/usecase"
)

const metricsNamespace = "quality_radar"

// app は設定から組み立てた依存関係一式
type app struct {
	cfg           *config.Config
	metrics       *metrics.Metrics
	responseCache *cache.TTLCache

	issueUseCase  usecase.IssueUseCase
	detailUseCase usecase.IssueDetailUseCase
	mapUseCase    usecase.MapUseCase
	exportUseCase usecase.ExportUseCase

	handlers handler.Handlers
}

// newApp はモックデータセット・外部APIクライアント・ユースケースを組み立てる
func newApp(cfg *config.Config, now time.Time) *app {
	m := metrics.NewMetrics(metricsNamespace)
	responseCache := cache.NewTTLCache(cache.WithObserver(m.ObserveCacheLookup))

	wikidataClient := wikidata.NewClient(wikidata.Config{
		BaseURL:   cfg.API.WikidataBaseURL,
		Timeout:   cfg.API.Timeout,
		EntityTTL: cfg.API.EntityTTL,
		SearchTTL: cfg.API.SearchTTL,
	}, responseCache, m)
	overpassClient := overpass.NewClient(overpass.Config{
		BaseURL:  cfg.API.OverpassBaseURL,
		Timeout:  cfg.API.Timeout,
		QueryTTL: cfg.API.OverpassTTL,
	}, responseCache, m)

	seed := cfg.Mock.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	issuesRepo := repository.NewMemoryIssuesRepository(repository.GenerateMockIssues(cfg.Mock.IssueCount, rng, now))
	activityRepo := repository.NewMemoryActivityRepository(repository.GenerateMockEvents(cfg.Mock.EventCount, now))
	log.Printf("🎲 モックデータを生成しました (問題: %d件, イベント: %d件, シード: %d)", cfg.Mock.IssueCount, cfg.Mock.EventCount, seed)

	clusterer := service.NewProximityClusterer(model.ClusterConfig{
		BaseRadius: cfg.Map.ClusterRadius,
		MaxZoom:    cfg.Map.ClusterMaxZoom,
	})
	center := model.LatLng{Lat: cfg.Map.DefaultCenter[0], Lng: cfg.Map.DefaultCenter[1]}

	a := &app{
		cfg:           cfg,
		metrics:       m,
		responseCache: responseCache,
		issueUseCase:  usecase.NewIssueUseCase(issuesRepo, activityRepo, cfg.Mock.TotalChecked, cfg.Table.PageSize),
		detailUseCase: usecase.NewIssueDetailUseCase(issuesRepo, wikidataClient, overpassClient),
		mapUseCase:    usecase.NewMapUseCase(issuesRepo, clusterer, m, center),
		exportUseCase: usecase.NewExportUseCase(issuesRepo, activityRepo, service.NewExportService(), m),
	}
	a.handlers = handler.Handlers{
		Issues: handler.NewIssuesHandler(a.issueUseCase, a.detailUseCase, maxPageSize(cfg.Table)),
		Map:    handler.NewMapHandler(a.mapUseCase, cfg.Map),
		Export: handler.NewExportHandler(a.exportUseCase),
		Entity: handler.NewEntityHandler(wikidataClient, overpassClient, responseCache),
	}
	return a
}

// maxPageSize はページサイズ選択肢の最大値（最低でもデフォルトのページサイズ）
func maxPageSize(t config.Table) int {
	largest := t.PageSize
	for _, n := range t.PageSizeOptions {
		if n > largest {
			largest = n
		}
	}
	return largest
}
