package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
	"QualityRadar-App/internal/domain/service"
	"QualityRadar-App/internal/usecase"
)

// IssuesHandler 品質問題に関するHTTPハンドラー
type IssuesHandler struct {
	issueUseCase  usecase.IssueUseCase
	detailUseCase usecase.IssueDetailUseCase
	maxPageSize   int
}

// NewIssuesHandler IssuesHandlerの新しいインスタンスを作成
func NewIssuesHandler(issueUseCase usecase.IssueUseCase, detailUseCase usecase.IssueDetailUseCase, maxPageSize int) *IssuesHandler {
	return &IssuesHandler{
		issueUseCase:  issueUseCase,
		detailUseCase: detailUseCase,
		maxPageSize:   maxPageSize,
	}
}

// ListIssues GET /api/issues - 絞り込み・並び替え・ページングした問題一覧
func (h *IssuesHandler) ListIssues(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	sortOrder, err := service.ParseSortOrder(c.Query("sort"))
	if err != nil {
		respondValidationError(c, &ValidationError{Field: "sort", Message: err.Error()})
		return
	}
	page, err := parseIntQuery(c, "page", 1, 1, 1<<20)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	pageSize, err := parseIntQuery(c, "page_size", 0, 1, h.maxPageSize)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	response, err := h.issueUseCase.List(c.Request.Context(), usecase.IssueQuery{
		Filters:  filters,
		Sort:     sortOrder,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondInternalError(c, "Failed to list issues", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetIssueDetail GET /api/issues/:id - 詳細パネル用データ
func (h *IssuesHandler) GetIssueDetail(c *gin.Context) {
	detail, err := h.detailUseCase.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondIssueError(c, "Failed to get issue detail", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateIssue POST /api/issues - 問題を登録
func (h *IssuesHandler) CreateIssue(c *gin.Context) {
	var req model.IssueCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, &ValidationError{Field: "body", Message: err.Error()})
		return
	}
	issue := req.ToIssue()
	if err := validateIssue(issue); err != nil {
		respondValidationError(c, err)
		return
	}

	created, err := h.issueUseCase.Create(c.Request.Context(), issue)
	if err != nil {
		respondIssueError(c, "Failed to create issue", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateIssue PATCH /api/issues/:id - 深刻度・信頼度・説明・解決状態の部分更新
func (h *IssuesHandler) UpdateIssue(c *gin.Context) {
	var patch model.IssuePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidationError(c, &ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if patch.IsEmpty() {
		respondValidationError(c, &ValidationError{Field: "body", Message: "更新する項目がありません"})
		return
	}
	if patch.Severity != nil && !model.IsValidSeverity(*patch.Severity) {
		respondValidationError(c, &ValidationError{Field: "severity", Message: "未知の深刻度です: " + string(*patch.Severity)})
		return
	}
	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 100) {
		respondValidationError(c, &ValidationError{Field: "confidence", Message: "0から100の整数で指定してください"})
		return
	}

	updated, err := h.issueUseCase.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondIssueError(c, "Failed to update issue", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteIssue DELETE /api/issues/:id - 問題を削除（選択からも外れる）
func (h *IssuesHandler) DeleteIssue(c *gin.Context) {
	if err := h.issueUseCase.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondIssueError(c, "Failed to delete issue", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleSelection POST /api/issues/:id/selection - 選択状態の切り替え
func (h *IssuesHandler) ToggleSelection(c *gin.Context) {
	id := c.Param("id")
	selected, err := h.issueUseCase.ToggleSelection(c.Request.Context(), id)
	if err != nil {
		respondIssueError(c, "Failed to toggle selection", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "selected": selected})
}

// SelectAll POST /api/issues/selection - 全件選択
func (h *IssuesHandler) SelectAll(c *gin.Context) {
	ids, err := h.issueUseCase.SelectAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to select issues", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}

// ClearSelection DELETE /api/issues/selection - 選択解除
func (h *IssuesHandler) ClearSelection(c *gin.Context) {
	if err := h.issueUseCase.ClearSelection(c.Request.Context()); err != nil {
		respondInternalError(c, "Failed to clear selection", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": []string{}})
}

// GetStats GET /api/stats - ダッシュボード統計
func (h *IssuesHandler) GetStats(c *gin.Context) {
	stats, err := h.issueUseCase.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to compute stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetActivity GET /api/activity - アクティビティタイムライン
func (h *IssuesHandler) GetActivity(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit", 10, 1, 100)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	events, err := h.issueUseCase.Timeline(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, "Failed to get activity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// validateIssue は登録する問題の種別・深刻度・信頼度・座標・外部IDを検証する
func validateIssue(issue *model.Issue) error {
	if !model.IsValidIssueType(issue.Type) {
		return &ValidationError{Field: "type", Message: "未知の問題種別です: " + string(issue.Type)}
	}
	if !model.IsValidSeverity(issue.Severity) {
		return &ValidationError{Field: "severity", Message: "未知の深刻度です: " + string(issue.Severity)}
	}
	if issue.Confidence < 0 || issue.Confidence > 100 {
		return &ValidationError{Field: "confidence", Message: "0から100の整数で指定してください"}
	}
	if !helper.IsValidCoordinates(issue.Coordinates) {
		return &ValidationError{Field: "coordinates", Message: "緯度は-90から90、経度は-180から180の範囲で指定してください"}
	}
	if issue.HasWikidataID() && !helper.IsValidWikidataID(issue.WikidataID) {
		return &ValidationError{Field: "wikidata_id", Message: "Q42 の形式で指定してください"}
	}
	if issue.HasOSMID() && !helper.IsValidOSMID(issue.OSMID) {
		return &ValidationError{Field: "osm_id", Message: "n123 / w123 / r123 の形式で指定してください"}
	}
	return nil
}

// respondIssueError は存在しない問題なら404、ID重複なら409、それ以外は500を返す
func respondIssueError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, repository.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, repository.ErrIssueAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "conflict",
			"message": err.Error(),
		})
	default:
		respondInternalError(c, message, err)
	}
}

func respondInternalError(c *gin.Context, message string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": message + ": " + err.Error(),
	})
}
