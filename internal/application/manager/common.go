// Package manager implements the application services behind the device
// and operator surfaces. Managers derive scopes, orchestrate
// repositories and fire post-commit change checks; all wire mapping is
// delegated to the mapper package.
package manager

import (
	"context"
	"time"

	"enverge/internal/domain/subscription"
	"enverge/internal/shared/logger"
)

// ChangeNotifier schedules a notification batcher run. Satisfied by
// tasks.Broker. Enqueue failures are logged and swallowed: losing a
// notification never fails the write that triggered it.
type ChangeNotifier interface {
	EnqueueChangeCheck(ctx context.Context, resource int32, ts time.Time) error
}

// ListQuery is the parsed s/a/l triple of a 2030.5 list request.
type ListQuery struct {
	Start        int
	Limit        int
	ChangedAfter time.Time
}

// fireCheck enqueues a change check after a committed write. Runs on a
// detached context so a cancelled request cannot lose the trigger.
func fireCheck(notifier ChangeNotifier, log logger.Interface, resource subscription.ResourceType, ts time.Time) {
	if notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := notifier.EnqueueChangeCheck(ctx, int32(resource), ts); err != nil {
		log.Errorw("failed to enqueue change check",
			"resource", resource.String(), "timestamp", ts, "error", err)
	}
}
