package dispatch

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/fault"
	"github.com/roach88/datastore/internal/model"
)

// Executor wraps Save with outcome logging and metrics for per-entity
// services. Logging and metrics never change a result or error.
type Executor[T model.Object[T], S any] struct {
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	logger  *slog.Logger
	metrics *Metrics
}

// WithLogger sets the logger for save and retrieve records. Records are
// emitted at debug level.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(c *executorConfig) { c.logger = logger }
}

// WithMetrics records every save in m.
func WithMetrics(m *Metrics) ExecutorOption {
	return func(c *executorConfig) { c.metrics = m }
}

// NewExecutor creates an Executor. Without WithLogger it logs nothing.
func NewExecutor[T model.Object[T], S any](opts ...ExecutorOption) *Executor[T, S] {
	var cfg executorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor[T, S]{logger: cfg.logger, metrics: cfg.metrics, now: time.Now}
}

// Save runs the dispatcher and reports the outcome.
func (x *Executor[T, S]) Save(ctx context.Context, params ParamGroup[T], ops *OperationGroup[T, S], sess S) (Outcome, error) {
	start := x.now()
	outcome, err := Save(ctx, params, ops, sess)
	x.metrics.observe(params.ClassName(), outcome, err, x.now().Sub(start))

	if x.logger.Enabled(ctx, slog.LevelDebug) {
		obj, _ := params.Object()
		attrs := []any{
			"result", err == nil && outcome.Saved(),
			"outcome", outcomeLabel(outcome, err),
			"class", params.ClassName(),
			"object", describe(obj),
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		x.logger.DebugContext(ctx, "save result", attrs...)
	}
	return outcome, err
}

// SaveObject runs the dispatcher and reports whether the candidate is now
// persisted; see SaveObject (package level) for the exact semantics.
func (x *Executor[T, S]) SaveObject(ctx context.Context, params ParamGroup[T], ops *OperationGroup[T, S], sess S) (bool, error) {
	outcome, err := x.Save(ctx, params, ops, sess)
	if err != nil {
		return false, err
	}
	return outcome.Saved(), nil
}

// Retrieve loads the object with the given id through ops. Failures are
// returned as fault.KindRetrieve.
func (x *Executor[T, S]) Retrieve(ctx context.Context, ops *OperationGroup[T, S], id uuid.UUID, sess S) (T, bool, error) {
	class := className(reflect.TypeFor[T]())
	obj, found, err := ops.retrieve(ctx, id, sess)
	if err != nil {
		var zero T
		return zero, false, fault.Wrap(fault.KindRetrieve, "", class, id.String(), err)
	}
	if !found {
		x.logger.DebugContext(ctx, "not found", "class", class, "id", id)
		var zero T
		return zero, false, nil
	}
	x.logger.DebugContext(ctx, "retrieved", "class", class, "id", id)
	return obj, true, nil
}

func describe(obj any) any {
	if isAbsent(obj) {
		return "<absent>"
	}
	return obj
}
