package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/repository"
)

// EntityHandler はWikidata・OpenStreetMapのプロキシAPIとキャッシュ管理のハンドラー
type EntityHandler struct {
	entityRepo  repository.EntityRepository
	featureRepo repository.FeatureRepository
	cache       repository.ResponseCache
}

// NewEntityHandler は新しいEntityHandlerインスタンスを作成
func NewEntityHandler(
	entityRepo repository.EntityRepository,
	featureRepo repository.FeatureRepository,
	cache repository.ResponseCache,
) *EntityHandler {
	return &EntityHandler{
		entityRepo:  entityRepo,
		featureRepo: featureRepo,
		cache:       cache,
	}
}

// GetWikidataEntity GET /api/wikidata/entities/:id
func (h *EntityHandler) GetWikidataEntity(c *gin.Context) {
	id := strings.ToUpper(c.Param("id"))
	if !helper.IsValidWikidataID(id) {
		respondValidationError(c, &ValidationError{Field: "id", Message: "Q123 形式のIDを指定してください"})
		return
	}

	entity, err := h.entityRepo.FetchEntity(c.Request.Context(), id)
	if err != nil {
		log.Printf("❌ Wikidataエンティティの取得に失敗 (%s): %v", id, err)
		respondUpstreamError(c, err)
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Wikidata entity " + id + " not found",
		})
		return
	}
	c.JSON(http.StatusOK, entity)
}

// SearchWikidata GET /api/wikidata/search?q=&limit=
func (h *EntityHandler) SearchWikidata(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondValidationError(c, &ValidationError{Field: "q", Message: "検索語は必須です"})
		return
	}
	limit, err := parseIntQuery(c, "limit", 10, 1, 50)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	results, err := h.entityRepo.SearchEntities(c.Request.Context(), query, limit)
	if err != nil {
		log.Printf("❌ Wikidata検索に失敗 (%q): %v", query, err)
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

// GetOSMFeatures GET /api/osm/features?bbox=min_lng,min_lat,max_lng,max_lat&tag=amenity=school
func (h *EntityHandler) GetOSMFeatures(c *gin.Context) {
	raw := c.Query("bbox")
	if raw == "" {
		respondValidationError(c, &ValidationError{Field: "bbox", Message: "bboxは必須です"})
		return
	}
	bounds, err := parseBBox(raw)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	tags := make(map[string]string)
	for _, t := range c.QueryArray("tag") {
		key, value, ok := strings.Cut(t, "=")
		if !ok || key == "" {
			respondValidationError(c, &ValidationError{Field: "tag", Message: "key=value 形式で指定してください: " + t})
			return
		}
		tags[key] = value
	}

	features, err := h.featureRepo.QueryFeatures(c.Request.Context(), bounds, tags)
	if err != nil {
		log.Printf("❌ Overpassクエリに失敗: %v", err)
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(features),
		"features": features,
	})
}

// ClearCache DELETE /api/cache - レスポンスキャッシュを全削除
func (h *EntityHandler) ClearCache(c *gin.Context) {
	cleared := h.cache.Len()
	h.cache.Clear()
	log.Printf("🧹 レスポンスキャッシュを削除しました (%d件)", cleared)
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func respondUpstreamError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{
		"error":   "upstream_error",
		"message": err.Error(),
	})
}
