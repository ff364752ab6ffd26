package repository

import (
	"context"
	"sync"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/domain/repository"
)

// MemoryActivityRepository アクティビティイベントをメモリ上に保持するリポジトリ
type MemoryActivityRepository struct {
	mu     sync.RWMutex
	events []model.ActivityEvent
}

func NewMemoryActivityRepository(initial []model.ActivityEvent) repository.ActivityRepository {
	return &MemoryActivityRepository{
		events: append([]model.ActivityEvent(nil), initial...),
	}
}

func (r *MemoryActivityRepository) GetAll(ctx context.Context) ([]model.ActivityEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.ActivityEvent{}, r.events...), nil
}

func (r *MemoryActivityRepository) Append(ctx context.Context, event model.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}
