package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sender delivers an HTML email
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Worker processes email:send tasks
type Worker struct {
	sender Sender
	logger *zap.Logger
}

// NewWorker creates a new worker instance
func NewWorker(sender Sender, logger *zap.Logger) *Worker {
	return &Worker{
		sender: sender,
		logger: logger,
	}
}

// Register mounts the worker's handlers on mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailSend, w.HandleEmailTask)
}

// HandleEmailTask delivers a queued email. Malformed payloads are not retried.
func (w *Worker) HandleEmailTask(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to parse email payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.To == "" {
		return fmt.Errorf("email payload has no recipient: %w", asynq.SkipRetry)
	}

	if err := w.sender.Send(ctx, p.To, p.Subject, p.HTMLBody); err != nil {
		w.logger.Warn("email delivery failed", zap.Error(err))
		return err
	}

	w.logger.Info("email delivered", zap.String("subject", p.Subject))
	return nil
}
