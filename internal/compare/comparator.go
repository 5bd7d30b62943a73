package compare

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

// OpenFunc opens one trace source.
type OpenFunc func(ctx context.Context, path string, sel trace.Selector) (trace.Source, error)

// Failure records a trace that could not be processed.
type Failure struct {
	Path  string
	Label string
	Err   error
}

// Outcome is the comparison over every trace that could be processed.
type Outcome struct {
	Matrix   *Matrix
	Failures []Failure
}

// Comparator computes rail metrics for several traces one after another and
// merges them into a Matrix. A failing trace is skipped without affecting the others.
type Comparator struct {
	cfg    *config.Config
	open   OpenFunc
	logger *zap.Logger
}

// NewComparator creates a comparator reading traces with trace.Open.
func NewComparator(cfg *config.Config, logger *zap.Logger) *Comparator {
	return &Comparator{
		cfg:    cfg,
		open:   trace.Open,
		logger: logger,
	}
}

// WithOpener returns a copy of c that opens traces with open.
func (c *Comparator) WithOpener(open OpenFunc) *Comparator {
	cp := *c
	cp.open = open
	return &cp
}

// Run processes paths in order. Labels are derived from the paths.
func (c *Comparator) Run(ctx context.Context, paths []string) (*Outcome, error) {
	sugar := c.logger.Sugar()
	labels := trace.Labels(paths)
	out := &Outcome{Matrix: NewMatrix()}

	// Comparison never exports; only rail metrics are needed.
	pipeCfg := *c.cfg
	pipeCfg.Export = config.ExportConfig{}
	sel := trace.NewSelector(c.cfg.Signals)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := labels[i]
		rails, err := c.railsFor(ctx, &pipeCfg, sel, path, label)
		if err != nil {
			sugar.Warnw("Skipping trace", "path", path, "label", label, zap.Error(err))
			out.Failures = append(out.Failures, Failure{Path: path, Label: label, Err: err})
			continue
		}
		out.Matrix.Add(label, rails)
		sugar.Infow("Trace added to comparison", "label", label, "rails", len(rails))
	}

	if len(out.Matrix.TraceLabels) == 0 {
		return out, fmt.Errorf("%w: %d of %d failed", ErrNoTraces, len(out.Failures), len(paths))
	}
	return out, nil
}

func (c *Comparator) railsFor(ctx context.Context, cfg *config.Config, sel trace.Selector, path, label string) ([]pipeline.RailMetric, error) {
	src, err := c.open(ctx, path, sel)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	p, err := pipeline.New(cfg, src, label, c.logger)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.RailMetrics(ctx)
}
