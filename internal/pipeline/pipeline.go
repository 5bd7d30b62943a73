package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

// Pipeline runs one trace end to end: fetch, reduce, check budgets, export.
// Processing is synchronous; the only blocking point is the row fetch.
type Pipeline struct {
	cfg        *config.Config
	source     trace.Source
	traceLabel string
	calculator *Calculator
	budgets    *BudgetChecker
	metrics    *Metrics
	publisher  *Publisher
	logger     *zap.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithPublisher replaces the Kafka publisher built from configuration.
func WithPublisher(p *Publisher) Option {
	return func(pl *Pipeline) {
		pl.publisher = p
	}
}

// WithMetrics shares a metrics registry between pipelines.
func WithMetrics(m *Metrics) Option {
	return func(pl *Pipeline) {
		pl.metrics = m
	}
}

// New creates and wires up a pipeline for one trace source.
func New(cfg *config.Config, source trace.Source, traceLabel string, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	p := &Pipeline{
		cfg:        cfg,
		source:     source,
		traceLabel: traceLabel,
		calculator: NewCalculator(logger.Named("calculator")),
		logger:     logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}
	p.budgets = NewBudgetChecker(cfg.Budgets, p.metrics, logger.Named("budgets"))

	if p.publisher == nil && cfg.Export.Kafka.Enabled {
		pub, err := NewPublisher(cfg.Export.Kafka, logger.Named("publisher"))
		if err != nil {
			initLogger.Error("Failed to create publisher", zap.Error(err))
			return nil, err
		}
		p.publisher = pub
	}

	initLogger.Debug("Pipeline instance created",
		zap.String("trace", traceLabel),
		zap.Bool("kafka_export", p.publisher != nil),
		zap.String("textfile", cfg.Export.Textfile),
	)
	return p, nil
}

// Run fetches every query, reduces the trace and exports the result.
// A fetch failure aborts the run. Export failures are returned alongside a
// complete result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sugar := p.logger.Sugar()
	sugar.Infow("Processing trace", "trace", p.traceLabel)

	battery, err := p.fetch(ctx, trace.KindBattery)
	if err != nil {
		return nil, err
	}
	rails, err := p.fetch(ctx, trace.KindRail)
	if err != nil {
		return nil, err
	}
	frequency, err := p.fetch(ctx, trace.KindFrequency)
	if err != nil {
		return nil, err
	}

	res := p.calculator.Calculate(p.traceLabel, battery, rails, frequency)
	res.Violations = p.budgets.Check(p.traceLabel, res.Rails)
	p.metrics.Observe(res)

	var exportErrs []error
	if path := p.cfg.Export.Textfile; path != "" {
		if err := p.metrics.WriteTextfile(path); err != nil {
			sugar.Errorw("Failed to write metrics textfile", "path", path, zap.Error(err))
			exportErrs = append(exportErrs, err)
		} else {
			sugar.Infow("Metrics textfile written", "path", path)
		}
	}
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, res); err != nil {
			exportErrs = append(exportErrs, err)
		}
	}
	return res, errors.Join(exportErrs...)
}

// RailMetrics fetches and reduces only the rail counters, in first-appearance
// order. Nothing is exported.
func (p *Pipeline) RailMetrics(ctx context.Context) ([]RailMetric, error) {
	rows, err := p.fetch(ctx, trace.KindRail)
	if err != nil {
		return nil, err
	}
	rails, _ := p.calculator.Rails(rows)
	return rails, nil
}

// Metrics returns the registry-backed metrics of this pipeline.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Close releases the publisher, if any. The trace source is owned by the caller.
func (p *Pipeline) Close() error {
	if p.publisher == nil {
		return nil
	}
	return p.publisher.Close()
}

func (p *Pipeline) fetch(ctx context.Context, kind trace.Kind) ([]trace.Row, error) {
	rows, err := p.source.Rows(ctx, kind)
	if err != nil {
		p.logger.Error("Counter query failed",
			zap.String("trace", p.traceLabel),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, kind, err)
	}
	p.logger.Debug("Fetched counter rows",
		zap.String("trace", p.traceLabel),
		zap.Stringer("kind", kind),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}
