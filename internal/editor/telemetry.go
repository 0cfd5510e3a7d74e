package editor

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Telemetry owns an SDK meter provider read on demand and the scheduler metrics recorded on it.
type Telemetry struct {
	Metrics Metrics

	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

// Total is the value of one instrument summed over its attribute sets.
// Histograms report their observation count.
type Total struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// NewTelemetry installs an SDK meter provider as the global provider and creates the scheduler
// instruments on it.
func NewTelemetry() (*Telemetry, error) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	metrics, err := NewMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler metrics: %w", err)
	}
	return &Telemetry{Metrics: metrics, provider: mp, reader: reader}, nil
}

// Totals collects the current value of every scheduler instrument, sorted by name.
func (t *Telemetry) Totals(ctx context.Context) ([]Total, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}

	var totals []Total
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != namespace {
			continue
		}
		for _, m := range sm.Metrics {
			total := Total{Name: m.Name}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total.Value += dp.Value
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					total.Value += int64(dp.Count)
				}
			default:
				continue
			}
			totals = append(totals, total)
		}
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Name < totals[j].Name })
	return totals, nil
}

// Value returns the named total, or 0 when the instrument has recorded nothing.
func (t *Telemetry) Value(ctx context.Context, name string) (int64, error) {
	totals, err := t.Totals(ctx)
	if err != nil {
		return 0, err
	}
	for _, total := range totals {
		if total.Name == name {
			return total.Value, nil
		}
	}
	return 0, nil
}

// Shutdown flushes and stops the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
