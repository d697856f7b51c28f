// Package tasks is the redis-list task transport between the write
// paths and the notification pipeline. Two queues: change checks fan
// into the batcher, transmit tasks fan out to the delivery workers.
package tasks

import "time"

const (
	QueueCheck    = "enverge:tasks:check"
	QueueTransmit = "enverge:tasks:transmit"
)

// CheckTask asks the batcher to fan out every entity of one resource
// family changed or deleted at the exact trigger instant.
type CheckTask struct {
	Resource  int32     `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
}

// TransmitTask is one outbound notification POST. XML is the fully
// serialised Notification document; Attempt counts delivery tries.
type TransmitTask struct {
	RemoteURI        string `json:"remote_uri"`
	XML              []byte `json:"xml"`
	NotificationID   string `json:"notification_id"`
	SubscriptionHref string `json:"subscription_href"`
	SubscriptionID   uint64 `json:"subscription_id"`
	Attempt          int    `json:"attempt"`
}
