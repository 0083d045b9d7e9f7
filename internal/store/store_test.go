package store

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() ([]string, *pipeline.Run) {
	names := []string{"imu_x_mean", "hrv_sdnn"}
	v1 := features.NewFeatureVector()
	v1.Set("imu_x_mean", 0.25)
	v1.Set("hrv_sdnn", 31)
	v1.Label, v1.HasLabel = "N2", true
	v2 := features.NewFeatureVector()
	v2.Set("imu_x_mean", -0.5)

	res := &features.Result{
		Names:   names,
		Epochs:  []features.Epoch{{Index: 0, Start: 0, End: 64}, {Index: 1, Start: 64, End: 128}},
		Vectors: []*features.FeatureVector{v1, v2},
	}
	run := &pipeline.Run{
		Results: []pipeline.ParticipantResult{{Participant: "S002", Result: res}},
		Report: pipeline.Report{
			Attempted: 2, Succeeded: 1, Failed: 1, Epochs: 2,
			Failures: []pipeline.Failure{{Participant: "S003", Stage: pipeline.StageLoad, Err: errors.New("missing file")}},
			Duration: 1500 * time.Millisecond,
		},
	}
	return names, run
}

func TestOpen_MigratesToLatest(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Up again is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	require.NoError(t, s.MigrateDown())
	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = s.LoadVectors("any", "")
	assert.Error(t, err)
}

func TestCreateAndGetRun(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	run := &RunRecord{Version: "dev (unknown)", ConfigJSON: []byte(`{"workers":4}`), FeatureNames: []string{"a", "b"}}
	require.NoError(t, s.CreateRun(run))
	assert.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAtNs)

	got, err := s.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.FeatureNames, got.FeatureNames)
	assert.JSONEq(t, `{"workers":4}`, string(got.ConfigJSON))
	assert.Nil(t, got.FinishedAtNs)

	_, err = s.GetRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRun_RoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	names, run := sampleRun()

	rec := &RunRecord{Version: "dev (unknown)", FeatureNames: names}
	require.NoError(t, s.CreateRun(rec))
	require.NoError(t, s.SaveRun(rec.RunID, names, run))

	got, err := s.GetRun(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempted)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	require.NotNil(t, got.FinishedAtNs)

	vecs, err := s.LoadVectors(rec.RunID, "S002")
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{0.25, 31}, vecs[0].Values)
	assert.Equal(t, "N2", vecs[0].Label)
	assert.True(t, vecs[0].HasLabel)
	assert.Equal(t, 64, vecs[1].Start)
	assert.False(t, vecs[1].HasLabel)
	assert.Equal(t, -0.5, vecs[1].Values[0])
	assert.True(t, math.IsNaN(vecs[1].Values[1]))

	failures, err := s.Failures(rec.RunID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "S003", failures[0].Participant)
	assert.EqualError(t, failures[0].Err, "missing file")

	counts, err := s.LabelCounts(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"N2": 1}, counts)

	ids, err := s.ListRunIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{rec.RunID}, ids)
}

func TestFinishRun_UnknownRun(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	err := s.FinishRun("missing", pipeline.Report{})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDecodeVector_BadLength(t *testing.T) {
	t.Parallel()
	_, err := decodeVector(make([]byte, 7))
	assert.Error(t, err)

	v, err := decodeVector(encodeVector([]float64{1.5, math.Inf(-1)}))
	require.NoError(t, err)
	assert.Equal(t, 1.5, v[0])
	assert.True(t, math.IsInf(v[1], -1))
}
