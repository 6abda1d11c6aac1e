package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMatrixBuild(t *testing.T) {
	RecordMatrixBuild("test", 10*time.Millisecond, 7, 2)

	if got := testutil.ToFloat64(MatrixRows.WithLabelValues("test")); got != 7 {
		t.Errorf("MatrixRows = %v, want 7", got)
	}
	if got := testutil.ToFloat64(MatrixDegenerateRows.WithLabelValues("test")); got != 2 {
		t.Errorf("MatrixDegenerateRows = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/genres", "200"))
	RecordAPIRequest("GET", "/v1/genres", 200, time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/genres", "200"))
	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", after-before)
	}
}
