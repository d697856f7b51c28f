package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"enverge/internal/shared/logger"
)

// Broker moves tasks through redis lists. Producers LPUSH, workers
// BRPOP, so each queue is FIFO per producer.
type Broker struct {
	rdb    *redis.Client
	logger logger.Interface
}

func NewBroker(rdb *redis.Client, logger logger.Interface) *Broker {
	return &Broker{rdb: rdb, logger: logger}
}

func (b *Broker) push(ctx context.Context, queue string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := b.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// EnqueueChangeCheck schedules a batcher run for one resource family at
// the exact commit instant.
func (b *Broker) EnqueueChangeCheck(ctx context.Context, resource int32, ts time.Time) error {
	return b.push(ctx, QueueCheck, CheckTask{Resource: resource, Timestamp: ts})
}

// EnqueueTransmit schedules one outbound notification POST.
func (b *Broker) EnqueueTransmit(ctx context.Context, task TransmitTask) error {
	return b.push(ctx, QueueTransmit, task)
}

// DequeueChangeCheck blocks up to the timeout for the next check task.
// A nil task with nil error means the wait timed out.
func (b *Broker) DequeueChangeCheck(ctx context.Context, timeout time.Duration) (*CheckTask, error) {
	raw, err := b.pop(ctx, QueueCheck, timeout)
	if err != nil || raw == nil {
		return nil, err
	}
	var task CheckTask
	if err := json.Unmarshal(raw, &task); err != nil {
		b.logger.Errorw("discarding malformed check task", "error", err)
		return nil, nil
	}
	return &task, nil
}

// DequeueTransmit blocks up to the timeout for the next transmit task.
func (b *Broker) DequeueTransmit(ctx context.Context, timeout time.Duration) (*TransmitTask, error) {
	raw, err := b.pop(ctx, QueueTransmit, timeout)
	if err != nil || raw == nil {
		return nil, err
	}
	var task TransmitTask
	if err := json.Unmarshal(raw, &task); err != nil {
		b.logger.Errorw("discarding malformed transmit task", "error", err)
		return nil, nil
	}
	return &task, nil
}

func (b *Broker) pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	result, err := b.rdb.BRPop(ctx, timeout, queue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue from %s: %w", queue, err)
	}
	// BRPOP returns [queue, value].
	if len(result) != 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}
