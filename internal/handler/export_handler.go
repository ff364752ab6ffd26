package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/usecase"
)

// ExportHandler はエクスポートAPIのハンドラー
type ExportHandler struct {
	exportUseCase usecase.ExportUseCase
}

// NewExportHandler は新しいExportHandlerインスタンスを作成
func NewExportHandler(exportUseCase usecase.ExportUseCase) *ExportHandler {
	return &ExportHandler{exportUseCase: exportUseCase}
}

// Export は選択中の問題（なければフィルタ後の一覧）をファイルとして返す
// GET /api/export?format=csv|json|xml|quickstatements
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := model.ParseExportFormat(c.DefaultQuery("format", string(model.ExportCSV)))
	if err != nil {
		respondValidationError(c, &ValidationError{Field: "format", Message: err.Error()})
		return
	}
	filters, err := parseFilters(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.exportUseCase.Export(c.Request.Context(), format, filters)
	if err != nil {
		respondInternalError(c, "Failed to export issues", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("X-Issue-Count", fmt.Sprintf("%d", result.IssueCount))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
