// Package telemetry tags each request context with a trace id.
package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type telKey int

const traceIDKey telKey = iota + 1

// NoTrace is reported for contexts that never passed through SetTraceID.
const NoTrace = "00000000-0000-0000-0000-000000000000"

// Telemetry satisfies web.Telemetry.
type Telemetry struct{}

// NewTelemetry creates a new telemetry instance.
func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID stores a fresh random trace id on ctx.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceIDKey, uuid.NewString())
}

// GetTraceID returns the trace id stored on ctx, or NoTrace.
func (t Telemetry) GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}
