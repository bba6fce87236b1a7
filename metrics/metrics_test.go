package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/broady/harmony/model"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.RunsTotal == nil || r.RunDuration == nil || r.WarningsTotal == nil || r.SurfaceSize == nil {
		t.Fatal("metrics not initialized")
	}
	if r.Gatherer() == nil {
		t.Error("Gatherer() = nil")
	}
}

func TestRecordRun(t *testing.T) {
	r := NewRegistry()
	warnings := []model.Warning{
		{Code: model.WarnUnmappableParam},
		{Code: model.WarnUnmappableMember},
		{Code: model.WarnUnmappableMember},
	}
	r.RecordRun("ok", 20*time.Millisecond, warnings, Surface{Operations: 3, Types: 5, Converters: 2})
	r.RecordRun("malformed_route", time.Millisecond, nil, Surface{Operations: 99})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"runs ok", testutil.ToFloat64(r.RunsTotal.WithLabelValues("ok")), 1},
		{"runs failed", testutil.ToFloat64(r.RunsTotal.WithLabelValues("malformed_route")), 1},
		{"member warnings", testutil.ToFloat64(r.WarningsTotal.WithLabelValues(model.WarnUnmappableMember)), 2},
		{"param warnings", testutil.ToFloat64(r.WarningsTotal.WithLabelValues(model.WarnUnmappableParam)), 1},
		{"operations", testutil.ToFloat64(r.SurfaceSize.WithLabelValues("operations")), 3},
		{"types", testutil.ToFloat64(r.SurfaceSize.WithLabelValues("types")), 5},
		{"converters", testutil.ToFloat64(r.SurfaceSize.WithLabelValues("converters")), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	var m dto.Metric
	if err := r.RunDuration.Write(&m); err != nil {
		t.Fatal(err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestRecordRun_Nil(t *testing.T) {
	var r *Registry
	r.RecordRun("ok", time.Second, []model.Warning{{Code: model.WarnRenamed}}, Surface{})
}
