package notification

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/tasks"
	"enverge/internal/shared/config"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/logger"
)

// dequeueWait bounds each blocking pop so workers notice shutdown.
const dequeueWait = 5 * time.Second

// Deliverer drains both task queues: check tasks run the batcher,
// transmit tasks become HTTP POSTs to subscriber endpoints.
type Deliverer struct {
	broker  *tasks.Broker
	batcher *Batcher
	client  *http.Client
	cfg     config.NotifierConfig
	logger  logger.Interface
}

func NewDeliverer(broker *tasks.Broker, batcher *Batcher, cfg config.NotifierConfig, log logger.Interface) *Deliverer {
	return &Deliverer{
		broker:  broker,
		batcher: batcher,
		client: &http.Client{
			Timeout: time.Duration(cfg.AttemptTimeout) * time.Second,
		},
		cfg:    cfg,
		logger: log,
	}
}

// Run blocks until the context is cancelled. One goroutine consumes
// check tasks; cfg.Concurrency goroutines consume transmit tasks.
func (d *Deliverer) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.checkLoop(ctx)
	}()

	workers := d.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.transmitLoop(ctx)
		}()
	}

	wg.Wait()
}

func (d *Deliverer) checkLoop(ctx context.Context) {
	for ctx.Err() == nil {
		task, err := d.broker.DequeueChangeCheck(ctx, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Errorw("failed to dequeue check task", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		resource := subscription.ResourceType(task.Resource)
		if err := d.batcher.CheckChangedOrDeleted(ctx, resource, task.Timestamp); err != nil {
			d.logger.Errorw("change check failed",
				"resource", resource.String(), "timestamp", task.Timestamp, "error", err)
		}
	}
}

func (d *Deliverer) transmitLoop(ctx context.Context) {
	for ctx.Err() == nil {
		task, err := d.broker.DequeueTransmit(ctx, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Errorw("failed to dequeue transmit task", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		d.deliver(ctx, task)
	}
}

// deliver POSTs one notification. Any non-2xx outcome requeues the task
// until the attempt budget is spent.
func (d *Deliverer) deliver(ctx context.Context, task *tasks.TransmitTask) {
	err := d.post(ctx, task)
	if err == nil {
		d.logger.Debugw("notification delivered",
			"notification_id", task.NotificationID,
			"subscription", task.SubscriptionHref,
			"attempt", task.Attempt)
		return
	}

	task.Attempt++
	if task.Attempt >= d.cfg.MaxAttempts {
		d.logger.Errorw("dropping notification after final attempt",
			"notification_id", task.NotificationID,
			"remote_uri", task.RemoteURI,
			"attempts", task.Attempt,
			"error", err)
		return
	}

	d.logger.Warnw("notification delivery failed, requeueing",
		"notification_id", task.NotificationID,
		"remote_uri", task.RemoteURI,
		"attempt", task.Attempt,
		"error", err)
	time.Sleep(time.Duration(task.Attempt) * time.Second)
	if err := d.broker.EnqueueTransmit(ctx, *task); err != nil {
		d.logger.Errorw("failed to requeue notification",
			"notification_id", task.NotificationID, "error", err)
	}
}

func (d *Deliverer) post(ctx context.Context, task *tasks.TransmitTask) error {
	attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.AttemptTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, task.RemoteURI, bytes.NewReader(task.XML))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeSep2XML)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("subscriber returned status %d", resp.StatusCode)
	}
	return nil
}
