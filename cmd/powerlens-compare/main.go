package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/compare"
	"github.com/sanspareilsmyn/powerlens/internal/config"
	"github.com/sanspareilsmyn/powerlens/internal/logging"
	"github.com/sanspareilsmyn/powerlens/internal/report"
	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

var (
	configFile = flag.String("config", "", "Path to the configuration file (optional)")
	outFlag    = flag.String("out", "", "Comparison HTML path; overrides compare.output")
	metricFlag = flag.String("metric", "", "Comparison metric: avg_power or total_power; overrides compare.metric")
	matrixFlag = flag.String("matrix", "", "Optional .yaml/.json path for the comparison matrix")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] TRACE_OR_DIR...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %q: %v\n", *configFile, err)
		return 1
	}
	if err := applyFlags(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 2
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	paths, err := trace.ExpandPaths(cfg.Compare.Traces)
	if err != nil {
		sugar.Errorw("Failed to expand trace paths", zap.Error(err))
		return 1
	}
	if len(paths) == 0 {
		sugar.Error("No trace files found; pass trace files or directories containing them")
		return 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		sugar.Infow("Received signal, cancelling...", "signal", sig.String())
		cancel()
	}()

	comparator := compare.NewComparator(cfg, logger.Named("comparator"))
	outcome, err := comparator.Run(ctx, paths)
	if err != nil {
		sugar.Errorw("Comparison failed", zap.Error(err))
		return 1
	}

	if err := report.WriteFile(cfg.Compare.Output, func(w io.Writer) error {
		return report.RenderCompareHTML(w, outcome.Matrix, cfg.Compare.Metric)
	}); err != nil {
		sugar.Errorw("Failed to write comparison report", "path", cfg.Compare.Output, zap.Error(err))
		return 1
	}
	sugar.Infow("Comparison report generated",
		"path", cfg.Compare.Output,
		"traces", len(outcome.Matrix.TraceLabels),
		"failed", len(outcome.Failures),
	)

	if cfg.Compare.MatrixOutput != "" {
		if err := report.WriteMatrix(cfg.Compare.MatrixOutput, outcome.Matrix); err != nil {
			sugar.Errorw("Failed to write comparison matrix", "path", cfg.Compare.MatrixOutput, zap.Error(err))
			return 1
		}
		sugar.Infow("Comparison matrix written", "path", cfg.Compare.MatrixOutput)
	}

	if len(outcome.Failures) > 0 {
		return 3
	}
	return 0
}

func applyFlags(cfg *config.Config) error {
	if flag.NArg() > 0 {
		cfg.Compare.Traces = flag.Args()
	}
	if *outFlag != "" {
		cfg.Compare.Output = *outFlag
	}
	if *metricFlag != "" {
		cfg.Compare.Metric = *metricFlag
	}
	if *matrixFlag != "" {
		cfg.Compare.MatrixOutput = *matrixFlag
	}
	return config.Validate(cfg)
}
