// Package audit records the pipeline's transition trail. Events are
// append-only; a store persists them and an optional sink streams them out.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened to a run.
type Action string

const (
	ActionRunStarted            Action = "run_started"
	ActionStageAdvanced         Action = "stage_advanced"
	ActionValidationRejected    Action = "validation_rejected"
	ActionSubmissionAccepted    Action = "submission_accepted"
	ActionSubmissionRejected    Action = "submission_rejected"
	ActionVerificationSucceeded Action = "verification_succeeded"
	ActionVerificationFailed    Action = "verification_failed"
	ActionAutoLoginDegraded     Action = "auto_login_degraded"
	ActionRunRestarted          Action = "run_restarted"
)

// Event is one audit record. Reason carries the validator reason or the
// remote rejection message; Stage is the pipeline state at emit time.
// Device describes the client that triggered the transition, when known.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Action    Action    `json:"action"`
	Stage     string    `json:"stage"`
	Reason    string    `json:"reason,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// Store persists events. Implementations: memory, postgres.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRun(ctx context.Context, runID string) ([]Event, error)
}

// Sink streams events beyond the store, for example to a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
