package ports

// Telemetry is a fire-and-forget analytics sink. Implementations must not block
// and must not panic into the caller.
type Telemetry interface {
	RecordPageView(name string)
	RecordEvent(category, label string)
	RecordException(message string)
}

// NopTelemetry discards everything
type NopTelemetry struct{}

// RecordPageView implements Telemetry
func (NopTelemetry) RecordPageView(string) {}

// RecordEvent implements Telemetry
func (NopTelemetry) RecordEvent(string, string) {}

// RecordException implements Telemetry
func (NopTelemetry) RecordException(string) {}

var _ Telemetry = NopTelemetry{}
