package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics represents all metrics related to the Store
type StoreMetrics struct {
	persistenceDurationMicro metric.Int64Histogram
	persistenceDurationMs    metric.Int64Histogram
	ctx                      context.Context
}

// NewStoreMetrics creates an instance of StoreMetrics
func NewStoreMetrics(ctx context.Context, meter metric.Meter) (*StoreMetrics, error) {
	persistenceDurationMicro, err := meter.Int64Histogram("usermeta.store.persistence.duration.micro",
		metric.WithUnit("microseconds"))
	if err != nil {
		return nil, err
	}

	persistenceDurationMs, err := meter.Int64Histogram("usermeta.store.persistence.duration.ms")
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{
		persistenceDurationMicro: persistenceDurationMicro,
		persistenceDurationMs:    persistenceDurationMs,
		ctx:                      ctx,
	}, nil
}

// CountPersistenceDuration counts the duration of a store persistence operation
func (metrics *StoreMetrics) CountPersistenceDuration(duration time.Duration) {
	metrics.persistenceDurationMicro.Record(metrics.ctx, duration.Microseconds())
	metrics.persistenceDurationMs.Record(metrics.ctx, duration.Milliseconds())
}
