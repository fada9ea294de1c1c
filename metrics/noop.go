package metrics

import "time"

// NoopRecorder discards everything. It is the default when metrics are off.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
