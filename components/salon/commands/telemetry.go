package commands

import (
	"context"

	"github.com/goliatone/go-salon/components/salon"
)

// Telemetry is the event sink shared with the salon package.
type Telemetry = salon.Telemetry

type discardEvents struct{}

func (discardEvents) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardEvents{}
	}
	return t
}
