package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeEmailSend is the asynq task type of a queued email
	TypeEmailSend = "email:send"
	// QueueName is the asynq queue queued emails are put on
	QueueName = "email"

	maxRetry    = 5
	taskTimeout = 30 * time.Second
)

// Payload is the JSON payload of an email:send task
type Payload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// NewEmailTask builds an email:send task
func NewEmailTask(p Payload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email payload: %w", err)
	}
	return asynq.NewTask(TypeEmailSend, payload, asynq.Queue(QueueName), asynq.MaxRetry(maxRetry), asynq.Timeout(taskTimeout)), nil
}

// enqueuer is satisfied by *asynq.Client
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender hands emails to the worker through asynq; Send returns once the task is enqueued
type QueueSender struct {
	client enqueuer
}

// NewQueueSender creates a sender enqueuing on client
func NewQueueSender(client *asynq.Client) *QueueSender {
	return &QueueSender{client: client}
}

// Send enqueues one email
func (s *QueueSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	task, err := NewEmailTask(Payload{To: to, Subject: subject, HTMLBody: htmlBody})
	if err != nil {
		return err
	}

	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	return nil
}
