package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func sine(n int, rate, freq, amp, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amp*math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

// ---------------------------------------------------------------------------
// Design
// ---------------------------------------------------------------------------

func TestButterworth_SecondOrderHalfNyquist(t *testing.T) {
	t.Parallel()
	lp, err := Butterworth(2, KindLowpass, 0.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.29289322, 0.58578644, 0.29289322}, lp.B, 1e-7)
	assert.InDeltaSlice(t, []float64{1, 0, 0.17157288}, lp.A, 1e-7)

	hp, err := Butterworth(2, KindHighpass, 0.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.29289322, -0.58578644, 0.29289322}, hp.B, 1e-7)
	assert.InDeltaSlice(t, []float64{1, 0, 0.17157288}, hp.A, 1e-7)
}

func TestButterworth_BandpassBlocksDC(t *testing.T) {
	t.Parallel()
	bp, err := Butterworth(3, KindBandpass, 0.1, 0.3)
	require.NoError(t, err)
	require.Len(t, bp.B, 7)
	require.Len(t, bp.A, 7)
	assert.InDelta(t, 1.0, bp.A[0], 1e-12)
	assert.InDelta(t, 0.0, floats.Sum(bp.B), 1e-10)
}

func TestButterworth_InvalidArguments(t *testing.T) {
	t.Parallel()
	_, err := Butterworth(0, KindLowpass, 0.2)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Butterworth(2, KindLowpass, 1)
	assert.ErrorIs(t, err, ErrInvalidCutoff)

	_, err = Butterworth(2, KindBandpass, 0.3, 0.1)
	assert.ErrorIs(t, err, ErrInvalidCutoff)

	_, err = Butterworth(2, KindBandpass, 0.3)
	assert.ErrorIs(t, err, ErrInvalidCutoff)
}

// ---------------------------------------------------------------------------
// Filtering
// ---------------------------------------------------------------------------

func TestLowpass_ZeroLag(t *testing.T) {
	t.Parallel()
	const rate = 64.0
	x := sine(640, rate, 1, 1, 0)
	s := mustSignal(t, x, rate)
	y, err := Lowpass(s, 5, 4)
	require.NoError(t, err)
	require.Equal(t, s.Len(), y.Len())

	out := y.Values()
	bestLag, best := 0, math.Inf(-1)
	for lag := -10; lag <= 10; lag++ {
		var c float64
		for i := range x {
			j := i + lag
			if j < 0 || j >= len(out) {
				continue
			}
			c += x[i] * out[j]
		}
		if c > best {
			best, bestLag = c, lag
		}
	}
	assert.Equal(t, 0, bestLag)
}

func TestHighpass_RemovesOffset(t *testing.T) {
	t.Parallel()
	const rate = 64.0
	s := mustSignal(t, sine(1280, rate, 3, 1, 9.81), rate)
	y, err := Highpass(s, 0.5, 4)
	require.NoError(t, err)
	mid := y.Values()[320:960]
	var mean float64
	for _, v := range mid {
		mean += v
	}
	mean /= float64(len(mid))
	assert.InDelta(t, 0, mean, 0.05)
}

func TestBandpass_Validation(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, sine(640, 64, 1, 1, 0), 64)

	_, err := Bandpass(s, 4, 2, 3)
	assert.ErrorIs(t, err, ErrInvalidCutoff)

	_, err = Bandpass(s, 0.5, 32, 3)
	assert.ErrorIs(t, err, ErrInvalidCutoff)

	_, err = Lowpass(s, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	y, err := Bandpass(s, 0.5, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, s.Len(), y.Len())
}

func TestFiltFilt_SignalTooShort(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, make([]float64, 15), 64)
	_, err := Lowpass(s, 5, 4)
	assert.ErrorIs(t, err, ErrSignalTooShort)
}

func TestRemoveGravity_ConstantAxes(t *testing.T) {
	t.Parallel()
	n := 512
	axes := make([]Signal, 3)
	for i, g := range []float64{0, 0, 1} {
		samples := make([]float64, n)
		for j := range samples {
			samples[j] = g
		}
		axes[i] = mustSignal(t, samples, 64)
	}
	out, err := RemoveGravity(axes, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, axis := range out {
		for j, v := range axis.Values() {
			if math.Abs(v) > 1e-8 {
				t.Fatalf("axis %d sample %d = %v, want ~0", i, j, v)
			}
		}
	}
}
