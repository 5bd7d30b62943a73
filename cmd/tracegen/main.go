package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/trace"
)

var (
	outFlag      = flag.String("out", "trace.db", "Output trace (.db, .sqlite, .jsonl, .jsonl.zst)")
	durationFlag = flag.Duration("duration", 30*time.Second, "Simulated trace length")
	intervalFlag = flag.Duration("interval", 250*time.Millisecond, "Nominal sampling interval")
	seedFlag     = flag.Int64("seed", 0, "Random seed (0 uses the current time)")
	resetFlag    = flag.Bool("reset", true, "Inject one energy counter reset per rail")
)

// railProfile describes one simulated power rail by its mean draw.
type railProfile struct {
	name    string
	meanMW  float64
	jitter  float64
	spikeMW float64
}

var rails = []railProfile{
	{name: "power.rails.cpu.big", meanMW: 850, jitter: 0.35, spikeMW: 2200},
	{name: "power.rails.cpu.little", meanMW: 160, jitter: 0.20, spikeMW: 400},
	{name: "power.rails.gpu", meanMW: 420, jitter: 0.40, spikeMW: 1500},
	{name: "power.rails.ddr.a", meanMW: 95, jitter: 0.10},
	{name: "power.rails.display", meanMW: 310, jitter: 0.05},
}

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		sugar.Info("Shutdown signal received, stopping generator...")
		cancel()
	}()

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	rows := generateRows(rng, *durationFlag, *intervalFlag, *resetFlag)
	if err := trace.WriteFile(ctx, *outFlag, rows); err != nil {
		sugar.Fatalw("Failed to write trace", "path", *outFlag, zap.Error(err))
	}
	sugar.Infow("Synthetic trace written",
		"path", *outFlag,
		"rows", len(rows),
		"seed", seed,
		"duration", durationFlag.String(),
	)
}

// generateRows simulates irregular sampling: every track gets its own jittered
// timestamps, and rows are shuffled so consumers cannot rely on ordering.
func generateRows(rng *rand.Rand, duration, interval time.Duration, injectReset bool) []trace.Row {
	// Offset from boot so timestamps look like trace-clock nanoseconds.
	const bootOffset = int64(3_600 * time.Second)
	var rows []trace.Row

	timestamps := func() []int64 {
		var out []int64
		for t := int64(0); t <= int64(duration); {
			out = append(out, bootOffset+t)
			step := float64(interval) * (0.5 + rng.Float64())
			t += int64(step)
		}
		return out
	}

	for _, r := range rails {
		ts := timestamps()
		resetAt := -1
		if injectReset && len(ts) > 4 {
			resetAt = 2 + rng.Intn(len(ts)-3)
		}
		var energyUJ float64
		for i, t := range ts {
			if i > 0 {
				dt := float64(t-ts[i-1]) / 1e9
				p := r.meanMW * (1 + r.jitter*rng.NormFloat64())
				if r.spikeMW > 0 && rng.Float64() < 0.03 {
					p += r.spikeMW * rng.Float64()
				}
				energyUJ += max(p, 0) * 1000 * dt
			}
			if i == resetAt {
				energyUJ = 0
			}
			rows = append(rows, trace.Row{TS: t, Value: energyUJ, Name: r.name, Unit: "uJ"})
		}
	}

	capacity := 87.0
	chargeUAh := 3_400_000.0
	for _, t := range timestamps() {
		currentUA := -420_000 * (1 + 0.25*rng.NormFloat64())
		capacity -= 0.002 + 0.001*rng.Float64()
		chargeUAh += currentUA * float64(interval) / float64(time.Hour)
		rows = append(rows,
			trace.Row{TS: t, Value: currentUA, Name: "batt.current_ua", Unit: "uA"},
			trace.Row{TS: t, Value: capacity, Name: "batt.capacity_pct", Unit: "%"},
			trace.Row{TS: t, Value: chargeUAh, Name: "batt.charge_uah", Unit: "uAh"},
		)
	}

	freqs := []float64{300_000, 1_100_000, 1_800_000, 2_400_000}
	for cpu := 0; cpu < 4; cpu++ {
		name := fmt.Sprintf("cpu%d.freq", cpu)
		for _, t := range timestamps() {
			rows = append(rows, trace.Row{TS: t, Value: freqs[rng.Intn(len(freqs))], Name: name, Unit: "kHz"})
		}
	}

	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}
