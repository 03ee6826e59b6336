package repo

import (
	"context"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
)

// ClassifierRepo is the intent classifier interface
// The session ID keys the classifier's own slot-filling context
type ClassifierRepo interface {
	Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.Intent, error)
}
