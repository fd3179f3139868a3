package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/v1/contacts", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/v1/contacts", "POST", "VALIDATION_FAILED")
	m.RecordError("/api/v1/contacts", "POST", "VALIDATION_FAILED")

	assert.Equal(t, int64(2), m.ErrorCount("/api/v1/contacts", "POST", "VALIDATION_FAILED"))
	assert.Equal(t, int64(0), m.ErrorCount("/api/v1/contacts", "POST", "NOT_FOUND"))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "INTERNAL")
	assert.Equal(t, int64(0), m.ErrorCount("/x", "GET", "INTERNAL"))
}
