package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
	"QualityRadar-App/internal/domain/service"
	"QualityRadar-App/internal/infrastructure/metrics"
)

type ExportUseCase interface {
	// Export は選択中の問題（なければフィルタ後の一覧）を指定形式で出力し、タイムラインに記録する
	Export(ctx context.Context, format model.ExportFormat, filters model.FilterState) (*model.ExportResult, error)
}

// exportUseCaseImpl はExportUseCaseの実装
type exportUseCaseImpl struct {
	issuesRepo    repository.IssuesRepository
	activityRepo  repository.ActivityRepository
	exportService service.ExportService
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewExportUseCase は新しいExportUseCaseインスタンスを作成
func NewExportUseCase(
	issuesRepo repository.IssuesRepository,
	activityRepo repository.ActivityRepository,
	exportService service.ExportService,
	m *metrics.Metrics,
) ExportUseCase {
	return &exportUseCaseImpl{
		issuesRepo:    issuesRepo,
		activityRepo:  activityRepo,
		exportService: exportService,
		metrics:       m,
		now:           time.Now,
	}
}

func (u *exportUseCaseImpl) Export(ctx context.Context, format model.ExportFormat, filters model.FilterState) (*model.ExportResult, error) {
	all, err := u.issuesRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("問題一覧の取得に失敗: %w", err)
	}
	selected, err := u.issuesRepo.GetSelection(ctx)
	if err != nil {
		return nil, fmt.Errorf("選択状態の取得に失敗: %w", err)
	}

	target := service.FilterIssues(all, filters)
	if len(selected) > 0 {
		target = service.SelectExportIssues(all, selected)
	}

	result, err := u.exportService.Export(target, format)
	if err != nil {
		return nil, fmt.Errorf("エクスポートに失敗: %w", err)
	}
	u.metrics.ObserveExport(string(format))

	if u.activityRepo != nil {
		if err := u.activityRepo.Append(ctx, service.NewExportEvent(result, u.now())); err != nil {
			log.Printf("⚠️ エクスポートイベントの記録に失敗: %v", err)
		}
	}

	log.Printf("📦 エクスポート完了 (形式: %s, 件数: %d, ファイル: %s)", format, result.IssueCount, result.FileName)
	return result, nil
}
