package core

import (
	"context"
	"resourcecatalog/internal/infra/persistence/memory"
	"resourcecatalog/pkg/domain"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	svc, _ := newTestService(t, WithMetricsRecorder(rec))
	ctx := context.Background()
	mustCreate(t, svc, alice, "a", domain.CategoryTreatment)
	_ = svc.DeleteResource(ctx, alice, 1)
	_, _ = svc.GetResource(ctx, 99)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_resource", StatusSuccess)); got != 1 {
		t.Fatalf("create success count %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("delete_resource", string(domain.KindUnauthorized))); got != 1 {
		t.Fatalf("delete unauthorized count %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("get_resource", string(domain.KindNotFound))); got != 1 {
		t.Fatalf("get not found count %v", got)
	}
	if n := testutil.CollectAndCount(rec.durations); n < 3 {
		t.Fatalf("expected duration series per operation, got %d", n)
	}
	rec.Observe(ctx, "", StatusSuccess, time.Millisecond)
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestStoreGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := memory.NewStore()
	if err := RegisterStoreGauge(reg, store.Len); err != nil {
		t.Fatalf("register: %v", err)
	}
	svc := NewService(store)
	if _, err := svc.CreateResource(context.Background(), alice, payload("a", "b")); err != nil {
		t.Fatalf("create: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 1 || families[0].GetName() != "catalog_resources" || families[0].GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("unexpected gauge families %+v", families)
	}
}
