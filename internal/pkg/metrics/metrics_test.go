package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(votesTotal.WithLabelValues("post", "up"))
	RecordVote("post", "up")
	assert.Equal(t, before+1, testutil.ToFloat64(votesTotal.WithLabelValues("post", "up")))

	before = testutil.ToFloat64(loginsTotal.WithLabelValues("ADMIN", "failure"))
	RecordLogin("ADMIN", false)
	assert.Equal(t, before+1, testutil.ToFloat64(loginsTotal.WithLabelValues("ADMIN", "failure")))

	before = testutil.ToFloat64(receiptsTotal.WithLabelValues(ReceiptFailed))
	RecordReceiptDispatch(ReceiptFailed)
	assert.Equal(t, before+1, testutil.ToFloat64(receiptsTotal.WithLabelValues(ReceiptFailed)))

	before = testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/health", "200"))
	ObserveRequest("GET", "/health", "200", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/health", "200")))
}
