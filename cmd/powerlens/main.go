package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
	"github.com/sanspareilsmyn/powerlens/internal/logging"
	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
	"github.com/sanspareilsmyn/powerlens/internal/report"
	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

var (
	configFile = flag.String("config", "", "Path to the configuration file (optional)")
	traceFlag  = flag.String("trace", "", "Trace to analyse (.db, .sqlite, .jsonl, .jsonl.zst); overrides trace.source")
	outFlag    = flag.String("out", "", "HTML report path; overrides report.output")
	noSummary  = flag.Bool("no-summary", false, "Do not print the rail summary to stdout")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %q: %v\n", *configFile, err)
		return 1
	}
	applyFlags(cfg)

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	if cfg.Trace.Source == "" {
		sugar.Error("No trace given; use -trace, a positional argument or trace.source")
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

	src, err := trace.Open(ctx, cfg.Trace.Source, trace.NewSelector(cfg.Signals))
	if err != nil {
		sugar.Errorw("Failed to open trace", "source", cfg.Trace.Source, zap.Error(err))
		return 1
	}
	defer src.Close()

	label := trace.Label(cfg.Trace.Source)
	pipe, err := pipeline.New(cfg, src, label, logger)
	if err != nil {
		sugar.Errorw("Failed to initialize pipeline", zap.Error(err))
		return 1
	}
	defer pipe.Close()

	res, runErr := pipe.Run(ctx)
	if res == nil {
		if errors.Is(runErr, context.Canceled) {
			sugar.Info("Processing cancelled.")
		} else {
			sugar.Errorw("Trace processing failed", "trace", label, zap.Error(runErr))
		}
		return 1
	}

	if err := report.WriteFile(cfg.Report.Output, func(w io.Writer) error {
		return report.RenderHTML(w, res, time.Now())
	}); err != nil {
		sugar.Errorw("Failed to write report", "path", cfg.Report.Output, zap.Error(err))
		return 1
	}
	sugar.Infow("HTML report generated", "path", cfg.Report.Output)

	if cfg.Report.Summary {
		fmt.Fprint(os.Stdout, report.Summary(res))
	}

	if runErr != nil {
		sugar.Errorw("Metric export failed", zap.Error(runErr))
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config) {
	if *traceFlag != "" {
		cfg.Trace.Source = *traceFlag
	} else if flag.NArg() > 0 {
		cfg.Trace.Source = flag.Arg(0)
	}
	if *outFlag != "" {
		cfg.Report.Output = *outFlag
	}
	if *noSummary {
		cfg.Report.Summary = false
	}
}
