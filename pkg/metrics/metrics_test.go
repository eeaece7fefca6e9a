package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithRegistry(reg), WithNamespace("testns"))
	if m == nil {
		t.Fatal("manager is nil")
	}

	// Exercise a few metrics and check the scrape output is non-empty.
	m.checksTotal.WithLabelValues("observed-no-alert").Inc()
	m.observationsAppended.Inc()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("no metric families registered")
	}
}

func TestGlobalHelpersDoNotPanic(t *testing.T) {
	RecordCheck("observed-alerted")
	RecordObservation()
	RecordAlertSent()
	RecordAlertDeliveryError()
	RecordTitleMiss()
	RecordPriceMiss()
	RecordTransportError()
	RecordFetchLatency(120)
	UpdateQueueSize(3)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.03)
	RecordEnqueue()
	RecordDequeue()
	RecordEnqueueError()
	UpdateWorkerCount(4)
	RecordWorkerLatency(850)
	RecordWorkerError()
	UpdateTrackedProducts(12)
	RecordStoreError()
	RecordHTTPRequest("products", "GET", "200")
	ObserveHTTPDuration("products", 4.2)
}

func TestHandlerServesScrape(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Fatal("empty metrics body")
	}
}
