package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/config"
	"QualityRadar-App/internal/usecase"
)

// MapHandler は地図表示APIのハンドラー
type MapHandler struct {
	mapUseCase usecase.MapUseCase
	settings   config.Map
}

// NewMapHandler は新しいMapHandlerインスタンスを作成
func NewMapHandler(mapUseCase usecase.MapUseCase, settings config.Map) *MapHandler {
	return &MapHandler{
		mapUseCase: mapUseCase,
		settings:   settings,
	}
}

// GetClusters はフィルタ後の問題をズームに応じてクラスタリングして返す
// GET /api/map/clusters?zoom=
func (h *MapHandler) GetClusters(c *gin.Context) {
	zoom, err := parseIntQuery(c, "zoom", h.settings.DefaultZoom, h.settings.MinZoom, h.settings.MaxZoom)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	filters, err := parseFilters(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	response, err := h.mapUseCase.Clusters(c.Request.Context(), filters, zoom)
	if err != nil {
		respondInternalError(c, "Failed to cluster issues", err)
		return
	}
	c.JSON(http.StatusOK, response)
}
