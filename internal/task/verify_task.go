package task

import (
	"FileVault/internal/mq"
	"FileVault/internal/service"
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownAction marks an event this worker does not understand.
var ErrUnknownAction = errors.New("unknown index action")

// ContentVerifier re-checks stored content against its recorded hash.
type ContentVerifier interface {
	VerifyContent(ctx context.Context, id string) error
}

// ProcessIndexEvent verifies the content behind a newly indexed record.
// Removal events and records deleted in the meantime need no work.
func ProcessIndexEvent(ctx context.Context, v ContentVerifier, event mq.IndexEvent) error {
	switch event.Action {
	case mq.ActionRemove:
		return nil
	case mq.ActionIndex:
		err := v.VerifyContent(ctx, event.FileID)
		if errors.Is(err, service.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, event.Action)
	}
}

// Retryable reports whether a failed event may succeed on a later attempt.
// A broken reference is a data problem and will not heal by waiting.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnknownAction), errors.Is(err, service.ErrBrokenReference):
		return false
	}
	return true
}

// RetryDelay picks the delay for the given attempt, repeating the last one.
func RetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
