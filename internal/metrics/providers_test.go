package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGeneration(t *testing.T) {
	okBefore := testutil.ToFloat64(GenerationRequestsTotal.WithLabelValues("test", "m", "success"))
	errBefore := testutil.ToFloat64(GenerationRequestsTotal.WithLabelValues("test", "m", "error"))

	ObserveGeneration("test", "m", time.Now(), nil)
	ObserveGeneration("test", "m", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(GenerationRequestsTotal.WithLabelValues("test", "m", "success")); got != okBefore+1 {
		t.Errorf("success count = %f, want %f", got, okBefore+1)
	}
	if got := testutil.ToFloat64(GenerationRequestsTotal.WithLabelValues("test", "m", "error")); got != errBefore+1 {
		t.Errorf("error count = %f, want %f", got, errBefore+1)
	}
}
