package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"QualityRadar-App/internal/config"
	"QualityRadar-App/internal/infrastructure/metrics"
)

// ServiceName はヘルスチェックで返すサービス名
const ServiceName = "QualityRadar-App"

// RequestIDHeader はリクエストIDを受け渡すヘッダー名
const RequestIDHeader = "X-Request-ID"

// Handlers はルーターに登録するハンドラー一式
type Handlers struct {
	Issues *IssuesHandler
	Map    *MapHandler
	Export *ExportHandler
	Entity *EntityHandler
}

// NewRouter はAPIルートを登録したginエンジンを作成
func NewRouter(h Handlers, cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"service": ServiceName,
			})
		})
		api.GET("/config", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"map": gin.H{
					"default_center": cfg.Map.DefaultCenter,
					"default_zoom":   cfg.Map.DefaultZoom,
					"min_zoom":       cfg.Map.MinZoom,
					"max_zoom":       cfg.Map.MaxZoom,
					"cluster_radius": cfg.Map.ClusterRadius,
				},
				"table": gin.H{
					"page_size":         cfg.Table.PageSize,
					"page_size_options": cfg.Table.PageSizeOptions,
				},
			})
		})

		issues := api.Group("/issues")
		{
			issues.GET("", h.Issues.ListIssues)
			issues.POST("", h.Issues.CreateIssue)
			issues.POST("/selection", h.Issues.SelectAll)
			issues.DELETE("/selection", h.Issues.ClearSelection)
			issues.GET("/:id", h.Issues.GetIssueDetail)
			issues.PATCH("/:id", h.Issues.UpdateIssue)
			issues.DELETE("/:id", h.Issues.DeleteIssue)
			issues.POST("/:id/selection", h.Issues.ToggleSelection)
		}
		api.GET("/stats", h.Issues.GetStats)
		api.GET("/activity", h.Issues.GetActivity)

		api.GET("/map/clusters", h.Map.GetClusters)
		api.GET("/export", h.Export.Export)

		api.GET("/wikidata/entities/:id", h.Entity.GetWikidataEntity)
		api.GET("/wikidata/search", h.Entity.SearchWikidata)
		api.GET("/osm/features", h.Entity.GetOSMFeatures)
		api.DELETE("/cache", h.Entity.ClearCache)
	}

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return r
}

// RequestID はX-Request-IDを引き継ぐか、なければ新しく発行する
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
