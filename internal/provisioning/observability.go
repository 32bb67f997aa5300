package provisioning

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives structured events during a provisioning run.
type Observer interface {
	// Printf emits a free-form progress line.
	Printf(format string, v ...any)

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns an Observer whose events carry extra context.
	WithFields(fields map[string]string) Observer
}

// Event is one structured provisioning event.
type Event struct {
	Type      EventType
	Step      string
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies provisioning events.
type EventType string

const (
	// EventStepStarted indicates a provisioning step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a step finished successfully.
	EventStepCompleted EventType = "step.completed"
	// EventStepSkipped indicates an optional step failed and was skipped.
	EventStepSkipped EventType = "step.skipped"
	// EventStepFailed indicates a required step failed; the run aborts.
	EventStepFailed EventType = "step.failed"
	// EventProgress indicates progress within a long-running step.
	EventProgress EventType = "progress"
)

// ZapObserver implements Observer on a zap logger.
type ZapObserver struct {
	log    *zap.SugaredLogger
	fields map[string]string
}

// NewZapObserver wraps a zap logger as an Observer.
func NewZapObserver(log *zap.Logger) *ZapObserver {
	return &ZapObserver{log: log.Sugar(), fields: map[string]string{}}
}

// Printf implements Observer.
func (o *ZapObserver) Printf(format string, v ...any) {
	o.log.Infof(format, v...)
}

// Event implements Observer.
func (o *ZapObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	kv := []any{"step", event.Step}
	for k, v := range o.fields {
		kv = append(kv, k, v)
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}

	msg := string(event.Type)
	if event.Message != "" {
		msg += ": " + event.Message
	}

	switch event.Type {
	case EventStepFailed:
		o.log.Errorw(msg, kv...)
	case EventStepSkipped:
		o.log.Warnw(msg, kv...)
	default:
		o.log.Infow(msg, kv...)
	}
}

// WithFields implements Observer.
func (o *ZapObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.fields)+len(fields))
	for k, v := range o.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ZapObserver{log: o.log, fields: merged}
}
