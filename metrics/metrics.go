package metrics

import "time"

// Recorder receives engine events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Event and operation names recorded by the engine.
const (
	EventSessionCreated    = "session_created"
	EventSessionConfirming = "session_confirming"
	EventSessionCompleted  = "session_completed"
	EventSessionExpired    = "session_expired"
	EventSessionFailed     = "session_failed"
	EventConversion        = "conversion"

	OpConvert     = "convert"
	OpInitSession = "init_session"
	OpMonitorTick = "monitor_tick"
)
