package editor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics defines the instrumentation the scheduler records.
type Metrics interface {
	IncTasksPushed(ctx context.Context, kind string)
	IncTasksCompleted(ctx context.Context, kind string)
	IncTaskFailures(ctx context.Context, kind string)
	AddOperations(ctx context.Context, kind string, n int)
	AddActiveTasks(ctx context.Context, delta int)
	IncSuspensions(ctx context.Context)
	RecordBudget(ctx context.Context, budget int)
}

type schedulerMetrics struct {
	tasksPushed    metric.Int64Counter
	tasksCompleted metric.Int64Counter
	taskFailures   metric.Int64Counter
	operations     metric.Int64Counter
	activeTasks    metric.Int64UpDownCounter
	suspensions    metric.Int64Counter
	budget         metric.Int64Histogram
}

const namespace = "editor"

// NewMetrics creates scheduler instruments on mp.
func NewMetrics(mp metric.MeterProvider) (Metrics, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	m := new(schedulerMetrics)
	var err error

	if m.tasksPushed, err = meter.Int64Counter(
		"tasks_pushed_total",
		metric.WithDescription("Total number of task instances pushed to the scheduler"),
	); err != nil {
		return nil, err
	}

	if m.tasksCompleted, err = meter.Int64Counter(
		"tasks_completed_total",
		metric.WithDescription("Total number of task instances removed after completion"),
	); err != nil {
		return nil, err
	}

	if m.taskFailures, err = meter.Int64Counter(
		"task_failures_total",
		metric.WithDescription("Total number of task instances ended by a step error"),
	); err != nil {
		return nil, err
	}

	if m.operations, err = meter.Int64Counter(
		"operations_total",
		metric.WithDescription("Total number of operations reported by task steps"),
	); err != nil {
		return nil, err
	}

	if m.activeTasks, err = meter.Int64UpDownCounter(
		"active_tasks",
		metric.WithDescription("Number of task instances in the active set"),
	); err != nil {
		return nil, err
	}

	if m.suspensions, err = meter.Int64Counter(
		"suspensions_total",
		metric.WithDescription("Total number of budget windows that ended in a suspension"),
	); err != nil {
		return nil, err
	}

	if m.budget, err = meter.Int64Histogram(
		"window_budget",
		metric.WithDescription("Operation budget computed for each window"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic(err)
	}
	return m
}

func kindAttr(kind string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("kind", kind))
}

func (m *schedulerMetrics) IncTasksPushed(ctx context.Context, kind string) {
	m.tasksPushed.Add(ctx, 1, kindAttr(kind))
}

func (m *schedulerMetrics) IncTasksCompleted(ctx context.Context, kind string) {
	m.tasksCompleted.Add(ctx, 1, kindAttr(kind))
}

func (m *schedulerMetrics) IncTaskFailures(ctx context.Context, kind string) {
	m.taskFailures.Add(ctx, 1, kindAttr(kind))
}

func (m *schedulerMetrics) AddOperations(ctx context.Context, kind string, n int) {
	m.operations.Add(ctx, int64(n), kindAttr(kind))
}

func (m *schedulerMetrics) AddActiveTasks(ctx context.Context, delta int) {
	m.activeTasks.Add(ctx, int64(delta))
}

func (m *schedulerMetrics) IncSuspensions(ctx context.Context) {
	m.suspensions.Add(ctx, 1)
}

func (m *schedulerMetrics) RecordBudget(ctx context.Context, budget int) {
	m.budget.Record(ctx, int64(budget))
}
