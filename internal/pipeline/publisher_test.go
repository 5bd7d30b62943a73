package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleResult() *Result {
	return &Result{
		Trace:     "idle",
		Battery:   []BatteryMetric{{Label: "batt.current_ua", Unit: "uA", Count: 2}},
		Rails:     []RailMetric{{Label: "power.rails.gpu", DurationS: 2, AvgPowerMW: 0.075, TotalEnergyMJ: 0.15}},
		Frequency: []FrequencyMetric{{Label: "cpu0.freq", Avg: 1000}},
		Totals:    TotalsRow{TotalAvgPowerMW: 0.075, TotalEnergyMJ: 0.15, GlobalDurationS: 2},
	}
}

func TestPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w, zap.NewNop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), sampleResult()))

	require.Len(t, w.msgs, 4)
	keys := make([]string, len(w.msgs))
	for i, m := range w.msgs {
		keys[i] = string(m.Key)
	}
	assert.Equal(t, []string{"idle/batt.current_ua", "idle/power.rails.gpu", "idle/cpu0.freq", "idle/"}, keys)

	var rail struct {
		RunID       string     `json:"run_id"`
		Trace       string     `json:"trace"`
		Kind        string     `json:"kind"`
		GeneratedAt time.Time  `json:"generated_at"`
		Record      RailRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &rail))
	assert.Equal(t, p.RunID(), rail.RunID)
	assert.NotEmpty(t, rail.RunID)
	assert.Equal(t, "idle", rail.Trace)
	assert.Equal(t, "rail", rail.Kind)
	assert.True(t, fixed.Equal(rail.GeneratedAt))
	assert.Equal(t, "0.075", rail.Record.AvgPower)
	assert.Equal(t, "2.000000s", rail.Record.Duration)

	var totals struct {
		Kind   string       `json:"kind"`
		Record TotalsRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.msgs[3].Value, &totals))
	assert.Equal(t, "totals", totals.Kind)
	assert.Equal(t, "0.150", totals.Record.TotalEnergy)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisherWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewPublisherWithWriter(w, zap.NewNop())

	err := p.Publish(context.Background(), sampleResult())

	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.ErrorContains(t, err, "broker down")
}

func TestNewPublisherValidatesConfig(t *testing.T) {
	_, err := NewPublisher(config.KafkaConfig{Enabled: true, Topic: "t"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidKafkaConfig)

	_, err = NewPublisher(config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidKafkaConfig)

	p, err := NewPublisher(config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "t"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestPublisherRunIDsDiffer(t *testing.T) {
	a := NewPublisherWithWriter(&fakeWriter{}, zap.NewNop())
	b := NewPublisherWithWriter(&fakeWriter{}, zap.NewNop())

	assert.NotEqual(t, a.RunID(), b.RunID())
}
