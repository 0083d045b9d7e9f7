package preprocess

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sleep.report/internal/testutil"
)

func TestResample_IdentityWhenRatesMatch(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, []float64{0.1, -2, math.NaN(), 7, 3.25}, 64)
	for _, m := range []InterpMethod{InterpLinear, InterpCubic, InterpNearest} {
		got, err := Resample(s, 64, m)
		require.NoError(t, err)
		if !got.Equal(s) {
			t.Errorf("%s: identity resample changed the signal: %v", m, got.Values())
		}
	}
}

func TestResample_LinearUpsampleExtrapolates(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, []float64{0, 1, 2, 3}, 1)
	got, err := Resample(s, 2, InterpLinear)
	require.NoError(t, err)
	want := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}
	assert.InDeltaSlice(t, want, got.Values(), 1e-12)
	assert.Equal(t, 2.0, got.Rate())
}

func TestResample_CubicReproducesLine(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, testutil.Ramp(10, 1, 2), 1)
	got, err := Resample(s, 3, InterpCubic)
	testutil.AssertNoError(t, err)
	require.Equal(t, 30, got.Len())
	for k := 0; k < got.Len(); k++ {
		testutil.AssertNear(t, fmt.Sprintf("sample %d", k), got.At(k), 2*float64(k)/3+1, 1e-9)
	}
}

func TestResample_NearestDownsample(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, 4)
	got, err := Resample(s, 2, InterpNearest)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6}, got.Values())
}

func TestResample_NearestUpsampleTiesPickEarlier(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, []float64{0, 10, 20, 30}, 64)
	got, err := Resample(s, 128, InterpNearest)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 10, 10, 20, 20, 30, 30}, got.Values())
}

func TestResample_Errors(t *testing.T) {
	t.Parallel()
	s := mustSignal(t, []float64{1, 2, 3}, 4)

	_, err := Resample(s, 8, InterpMethod("quintic"))
	if !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "resample", cfgErr.Op)

	_, err = Resample(s, 0, InterpLinear)
	assert.ErrorIs(t, err, ErrInvalidRate)
}
