package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/monitoring"
	"github.com/banshee-data/sleep.report/internal/timeutil"
)

var errMissingFile = errors.New("missing file")

type fakeSource struct {
	mu     sync.Mutex
	ids    []string
	tables map[string]*features.Table
	panics map[string]bool
	loads  []string
}

func (s *fakeSource) Participants() ([]string, error) { return s.ids, nil }

func (s *fakeSource) Load(id string, _ ...string) (*features.Table, error) {
	s.mu.Lock()
	s.loads = append(s.loads, id)
	s.mu.Unlock()
	if s.panics[id] {
		panic("corrupt block")
	}
	tbl, ok := s.tables[id]
	if !ok {
		return nil, errMissingFile
	}
	return tbl, nil
}

func imuTable(t *testing.T, rate float64, rows int) *features.Table {
	t.Helper()
	tbl, err := features.NewTable(rate)
	require.NoError(t, err)
	for _, ch := range []string{features.ChannelAccX, features.ChannelAccY, features.ChannelAccZ} {
		vals := make([]float64, rows)
		for i := range vals {
			vals[i] = float64(i%7) / 7
		}
		require.NoError(t, tbl.AddChannel(ch, vals))
	}
	return tbl
}

func newExtractor(t *testing.T) *features.Extractor {
	t.Helper()
	cfg := features.DefaultConfig()
	cfg.EpochDuration = 1
	ex, err := features.NewExtractor(cfg)
	require.NoError(t, err)
	return ex
}

func muteLogs(t *testing.T) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })
}

func TestRunner_IsolatesFailures(t *testing.T) {
	muteLogs(t)
	src := &fakeSource{
		ids: []string{"S001", "S002", "S003", "S004", "S005"},
		tables: map[string]*features.Table{
			"S001": imuTable(t, 64, 64*3),
			"S003": imuTable(t, 100, 300), // wrong rate for the extractor
			"S005": imuTable(t, 64, 64*2+10),
		},
		panics: map[string]bool{"S004": true},
	}
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r := &Runner{Source: src, Extractor: newExtractor(t), Workers: 3, Clock: clock}

	run, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.Equal(t, "S001", run.Results[0].Participant)
	assert.Equal(t, "S005", run.Results[1].Participant)
	assert.Equal(t, 3, run.Results[0].Result.Len())
	assert.Equal(t, 2, run.Results[1].Result.Len())

	rep := run.Report
	assert.Equal(t, 5, rep.Attempted)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 3, rep.Failed)
	assert.Equal(t, 5, rep.Epochs)

	stages := map[string]string{}
	for _, f := range rep.Failures {
		stages[f.Participant] = f.Stage
	}
	assert.Equal(t, map[string]string{"S002": StageLoad, "S003": StageExtract, "S004": StagePanic}, stages)
	for _, f := range rep.Failures {
		if f.Participant == "S002" {
			assert.ErrorIs(t, f, errMissingFile)
		}
	}

	// PPG is configured but no table carries BVP.
	assert.Len(t, rep.Target, features.EmbeddedFeatureCount)
	assert.Len(t, rep.Available, 50)
	assert.Contains(t, rep.Missing, "hrv_rmssd")
	assert.Equal(t, 5, rep.Absences["ppg"][features.ReasonMissingChannel])
}

// slowSource advances a mock clock on every load.
type slowSource struct {
	fakeSource
	clock *timeutil.MockClock
	delay time.Duration
}

func (s *slowSource) Load(id string, columns ...string) (*features.Table, error) {
	s.clock.Advance(s.delay)
	return s.fakeSource.Load(id, columns...)
}

func TestRunner_ParticipantTimingUsesClock(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	orig := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.Logf = orig })

	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	src := &slowSource{
		fakeSource: fakeSource{tables: map[string]*features.Table{"S007": imuTable(t, 64, 64)}},
		clock:      clock,
		delay:      1500 * time.Millisecond,
	}
	r := &Runner{Source: src, Extractor: newExtractor(t), Clock: clock}

	run, err := r.Run(context.Background(), []string{"S007"})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, run.Report.Duration)
	assert.Contains(t, lines, "[S007] extracted 1 epochs in 1.5s")
}

func TestRunner_ExplicitIDs(t *testing.T) {
	muteLogs(t)
	src := &fakeSource{tables: map[string]*features.Table{"S010": imuTable(t, 64, 64)}}
	r := &Runner{Source: src, Extractor: newExtractor(t)}
	run, err := r.Run(context.Background(), []string{"S010"})
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, []string{"S010"}, src.loads)
}

func TestRunner_CancelledContext(t *testing.T) {
	muteLogs(t)
	src := &fakeSource{ids: []string{"S001", "S002"}, tables: map[string]*features.Table{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Source: src, Extractor: newExtractor(t), Workers: 2}
	run, err := r.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Empty(t, src.loads)
	assert.Equal(t, 2, run.Report.Failed)
	for _, f := range run.Report.Failures {
		assert.Equal(t, StageCancelled, f.Stage)
	}
}

func TestRunner_RequiresWiring(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestReport_Write(t *testing.T) {
	rep := Report{
		Attempted: 3, Succeeded: 2, Failed: 1, Epochs: 40,
		Target:    []string{"a", "b"},
		Available: []string{"a"},
		Missing:   []string{"b"},
		Absences:  map[string]map[features.Reason]int{"hrv": {features.ReasonInsufficientPeaks: 4}},
		Failures:  []Failure{{Participant: "S009", Stage: StageLoad, Err: errMissingFile}},
		Duration:  61 * time.Second,
	}
	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "Participants: 3 attempted, 2 succeeded, 1 failed")
	assert.Contains(t, out, "Total epochs: 40")
	assert.Contains(t, out, "Using 1 features out of 2 target features")
	assert.Contains(t, out, "  - b")
	assert.Contains(t, out, "Absent hrv: insufficient peaks=4")
	assert.Contains(t, out, "Failed participant S009: load: missing file")
	assert.Contains(t, out, "Elapsed: 1m 1s")
}
