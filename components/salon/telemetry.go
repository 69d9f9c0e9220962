package salon

import "context"

// Telemetry records editor and admin events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

type autoConfirm struct{}

func (autoConfirm) Confirm(context.Context, string) bool { return true }

type noopAlerter struct{}

func (noopAlerter) Alert(context.Context, string) {}
