package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
)

// MemoryIssuesRepository プロセスメモリ上に問題一覧と選択状態を保持するリポジトリ
type MemoryIssuesRepository struct {
	mu       sync.RWMutex
	issues   []*model.Issue
	index    map[string]int
	selected []string
}

// NewMemoryIssuesRepository 初期データを持つリポジトリを作成
func NewMemoryIssuesRepository(initial []*model.Issue) repository.IssuesRepository {
	r := &MemoryIssuesRepository{
		issues: make([]*model.Issue, 0, len(initial)),
		index:  make(map[string]int, len(initial)),
	}
	for _, issue := range initial {
		if issue == nil {
			continue
		}
		if _, exists := r.index[issue.ID]; exists {
			continue
		}
		r.index[issue.ID] = len(r.issues)
		r.issues = append(r.issues, copyIssue(issue))
	}
	return r
}

func (r *MemoryIssuesRepository) GetAll(ctx context.Context) ([]*model.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Issue, len(r.issues))
	for i, issue := range r.issues {
		result[i] = copyIssue(issue)
	}
	return result, nil
}

func (r *MemoryIssuesRepository) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("問題ID %s: %w", id, repository.ErrIssueNotFound)
	}
	return copyIssue(r.issues[i]), nil
}

// Create はIDが空ならUUIDを割り当てて追加する
func (r *MemoryIssuesRepository) Create(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return fmt.Errorf("問題がnilです")
	}
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[issue.ID]; exists {
		return fmt.Errorf("問題ID %s: %w", issue.ID, repository.ErrIssueAlreadyExists)
	}
	r.index[issue.ID] = len(r.issues)
	r.issues = append(r.issues, copyIssue(issue))
	return nil
}

func (r *MemoryIssuesRepository) Update(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return fmt.Errorf("問題がnilです")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[issue.ID]
	if !ok {
		return fmt.Errorf("問題ID %s: %w", issue.ID, repository.ErrIssueNotFound)
	}
	r.issues[i] = copyIssue(issue)
	return nil
}

func (r *MemoryIssuesRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("問題ID %s: %w", id, repository.ErrIssueNotFound)
	}
	r.issues = append(r.issues[:i], r.issues[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.issues); j++ {
		r.index[r.issues[j].ID] = j
	}
	r.selected = removeID(r.selected, id)
	return nil
}

func (r *MemoryIssuesRepository) ToggleSelection(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return false, fmt.Errorf("問題ID %s: %w", id, repository.ErrIssueNotFound)
	}
	for _, s := range r.selected {
		if s == id {
			r.selected = removeID(r.selected, id)
			return false, nil
		}
	}
	r.selected = append(r.selected, id)
	return true, nil
}

func (r *MemoryIssuesRepository) SelectAll(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = make([]string, len(r.issues))
	for i, issue := range r.issues {
		r.selected[i] = issue.ID
	}
	return append([]string(nil), r.selected...), nil
}

func (r *MemoryIssuesRepository) ClearSelection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = nil
	return nil
}

func (r *MemoryIssuesRepository) GetSelection(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string{}, r.selected...), nil
}

func copyIssue(issue *model.Issue) *model.Issue {
	cp := *issue
	return &cp
}

func removeID(ids []string, target string) []string {
	result := ids[:0:0]
	for _, id := range ids {
		if id != target {
			result = append(result, id)
		}
	}
	return result
}
