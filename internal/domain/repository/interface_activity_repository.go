package repository

import (
	"context"

	"QualityRadar-App/internal/domain/model"
)

type ActivityRepository interface {
	GetAll(ctx context.Context) ([]model.ActivityEvent, error)
	Append(ctx context.Context, event model.ActivityEvent) error
}
