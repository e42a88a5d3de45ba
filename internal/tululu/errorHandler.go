package tululu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tululu/internal/storage/fails"
	"tululu/internal/types"
)

// ErrorHandler is told about every item which failed for good. Returned errors are
// only logged, they never stop the crawl.
type ErrorHandler interface {
	Handle(ctx context.Context, item types.FailedItem, err error) error
}

type LoggingHandler struct {
	Logger *slog.Logger
}

func (h *LoggingHandler) Handle(ctx context.Context, item types.FailedItem, err error) error {
	h.Logger.ErrorContext(ctx, fmt.Sprintf("Failed to process %s %d: %s", item.Kind, item.Id, err.Error()),
		slog.String("url", item.Url))
	return nil
}

type StoringHandler struct {
	RunId     uuid.UUID
	StartTime time.Time
	Fails     fails.Repository
}

func (s *StoringHandler) Handle(ctx context.Context, item types.FailedItem, err error) error {
	err = s.Fails.Save(ctx, s.RunId, s.StartTime, item, err)
	if err != nil {
		err = fmt.Errorf("saving fail: %w", err)
	}

	return err
}

type MultiHandler []ErrorHandler

func (m MultiHandler) Handle(ctx context.Context, item types.FailedItem, err error) error {
	var errs []error
	for _, h := range m {
		if herr := h.Handle(ctx, item, err); herr != nil {
			errs = append(errs, herr)
		}
	}

	return errors.Join(errs...)
}
