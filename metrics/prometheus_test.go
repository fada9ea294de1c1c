package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrometheusRecorderIsReconstructible(t *testing.T) {
	// Constructing a second recorder in the same process must reuse the
	// already-registered collectors instead of panicking.
	first := NewPrometheusRecorder()
	second := NewPrometheusRecorder()

	assert.NotPanics(t, func() {
		first.IncCounter(EventSessionCreated, map[string]string{"chain": "ethereum"})
		second.IncCounter(EventSessionCreated, map[string]string{"chain": "ethereum"})
		second.ObserveLatency(OpMonitorTick, time.Millisecond, map[string]string{"chain": "ethereum"})
	})
}
