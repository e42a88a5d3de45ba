package fails

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tululu/internal/types"
)

type Record struct {
	Id        uint64
	RunId     uuid.UUID
	StartTime time.Time
	Item      types.FailedItem
	Error     string
}

// Repository is a journal of failed items, one row per failure of a crawl run.
type Repository interface {
	Save(ctx context.Context, runId uuid.UUID, startTime time.Time, item types.FailedItem, failure error) error

	GetByRun(ctx context.Context, runId uuid.UUID) ([]*Record, error)
}
