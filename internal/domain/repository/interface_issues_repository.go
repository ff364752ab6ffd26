package repository

import (
	"context"
	"errors"

	"QualityRadar-App/internal/domain/model"
)

// ErrIssueNotFound 指定IDの問題が存在しない
var ErrIssueNotFound = errors.New("問題が見つかりません")

// ErrIssueAlreadyExists 同じIDの問題が既に登録されている
var ErrIssueAlreadyExists = errors.New("問題は既に存在します")

// IssuesRepository は品質問題と選択状態を保持するリポジトリ
type IssuesRepository interface {
	GetAll(ctx context.Context) ([]*model.Issue, error)
	GetByID(ctx context.Context, id string) (*model.Issue, error)
	// Create はIDが空なら新しいIDを割り当てる
	Create(ctx context.Context, issue *model.Issue) error
	Update(ctx context.Context, issue *model.Issue) error
	// Delete は選択状態からも取り除く
	Delete(ctx context.Context, id string) error

	// 選択状態（エクスポート対象）
	ToggleSelection(ctx context.Context, id string) (selected bool, err error)
	SelectAll(ctx context.Context) ([]string, error)
	ClearSelection(ctx context.Context) error
	GetSelection(ctx context.Context) ([]string, error)
}
