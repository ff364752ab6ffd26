package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
	"QualityRadar-App/internal/domain/service"
)

// IssueQuery 問題一覧の取得条件
type IssueQuery struct {
	Filters  model.FilterState
	Sort     service.SortOrder
	Page     int
	PageSize int
}

// IssueUseCase 問題一覧・選択状態・統計に関するビジネスロジック
type IssueUseCase interface {
	// List 条件に合う問題をページ単位で取得
	List(ctx context.Context, query IssueQuery) (*model.IssueListResponse, error)

	// Create 問題を登録し、検出イベントをタイムラインに追加する
	Create(ctx context.Context, issue *model.Issue) (*model.Issue, error)

	// Update 部分更新を適用する。未解決から解決済みになったら解決イベントを追加する
	Update(ctx context.Context, id string, patch model.IssuePatch) (*model.Issue, error)

	// Remove 問題を削除（選択状態からも外れる）
	Remove(ctx context.Context, id string) error

	// ToggleSelection 問題の選択状態を切り替え、切り替え後の状態を返す
	ToggleSelection(ctx context.Context, id string) (bool, error)
	SelectAll(ctx context.Context) ([]string, error)
	ClearSelection(ctx context.Context) error

	// Stats ダッシュボード統計を取得
	Stats(ctx context.Context) (*model.DashboardStats, error)

	// Timeline アクティビティを新しい順に取得
	Timeline(ctx context.Context, limit int) ([]model.ActivityEvent, error)
}

// issueUseCaseImpl IssueUseCaseの実装
type issueUseCaseImpl struct {
	issuesRepo   repository.IssuesRepository
	activityRepo repository.ActivityRepository
	totalChecked int
	pageSize     int
	now          func() time.Time
}

// NewIssueUseCase IssueUseCaseの新しいインスタンスを作成
func NewIssueUseCase(
	issuesRepo repository.IssuesRepository,
	activityRepo repository.ActivityRepository,
	totalChecked int,
	defaultPageSize int,
) IssueUseCase {
	return &issueUseCaseImpl{
		issuesRepo:   issuesRepo,
		activityRepo: activityRepo,
		totalChecked: totalChecked,
		pageSize:     defaultPageSize,
		now:          time.Now,
	}
}

func (u *issueUseCaseImpl) List(ctx context.Context, query IssueQuery) (*model.IssueListResponse, error) {
	all, err := u.issuesRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("問題一覧の取得に失敗: %w", err)
	}
	selected, err := u.issuesRepo.GetSelection(ctx)
	if err != nil {
		return nil, fmt.Errorf("選択状態の取得に失敗: %w", err)
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = u.pageSize
	}

	filtered := service.SortIssues(service.FilterIssues(all, query.Filters), query.Sort)
	page, pagination := service.Paginate(filtered, query.Page, pageSize)

	return &model.IssueListResponse{
		Issues:     page,
		Pagination: pagination,
		Selected:   selected,
	}, nil
}

func (u *issueUseCaseImpl) Create(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	if issue.DetectedAt.IsZero() {
		issue.DetectedAt = u.now()
	}
	if err := u.issuesRepo.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("問題の登録に失敗: %w", err)
	}
	u.recordEvent(ctx, issue, model.ActivityIssueDetected)

	log.Printf("➕ 問題を登録しました (ID: %s, 種別: %s, 深刻度: %s)", issue.ID, issue.Type, issue.Severity)
	return issue, nil
}

func (u *issueUseCaseImpl) Update(ctx context.Context, id string, patch model.IssuePatch) (*model.Issue, error) {
	issue, err := u.issuesRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("問題の取得に失敗: %w", err)
	}

	wasResolved := issue.IsResolved()
	patch.Apply(issue, u.now())
	if err := u.issuesRepo.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("問題の更新に失敗: %w", err)
	}
	if !wasResolved && issue.IsResolved() {
		u.recordEvent(ctx, issue, model.ActivityIssueResolved)
	}
	return issue, nil
}

// recordEvent はタイムラインへの追加に失敗しても処理を続ける
func (u *issueUseCaseImpl) recordEvent(ctx context.Context, issue *model.Issue, activity model.ActivityType) {
	if u.activityRepo == nil {
		return
	}
	if err := u.activityRepo.Append(ctx, service.NewIssueEvent(issue, activity, u.now())); err != nil {
		log.Printf("⚠️ アクティビティの記録に失敗 (%s): %v", issue.ID, err)
	}
}

func (u *issueUseCaseImpl) Remove(ctx context.Context, id string) error {
	if err := u.issuesRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("問題の削除に失敗: %w", err)
	}
	return nil
}

func (u *issueUseCaseImpl) ToggleSelection(ctx context.Context, id string) (bool, error) {
	selected, err := u.issuesRepo.ToggleSelection(ctx, id)
	if err != nil {
		return false, fmt.Errorf("選択状態の更新に失敗: %w", err)
	}
	return selected, nil
}

func (u *issueUseCaseImpl) SelectAll(ctx context.Context) ([]string, error) {
	return u.issuesRepo.SelectAll(ctx)
}

func (u *issueUseCaseImpl) ClearSelection(ctx context.Context) error {
	return u.issuesRepo.ClearSelection(ctx)
}

func (u *issueUseCaseImpl) Stats(ctx context.Context) (*model.DashboardStats, error) {
	all, err := u.issuesRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("問題一覧の取得に失敗: %w", err)
	}
	stats := service.ComputeStats(all, u.totalChecked, u.now())
	return &stats, nil
}

func (u *issueUseCaseImpl) Timeline(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	events, err := u.activityRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("アクティビティの取得に失敗: %w", err)
	}
	return service.Timeline(events, limit), nil
}
