package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		in     []float64
		method NormMethod
		want   []float64
	}{
		{"zscore", []float64{1, 3}, NormZScore, []float64{-1, 1}},
		{"zscore constant", []float64{5, 5, 5}, NormZScore, []float64{0, 0, 0}},
		{"minmax", []float64{1, 2, 3}, NormMinMax, []float64{0, 0.5, 1}},
		{"minmax constant", []float64{2, 2}, NormMinMax, []float64{0, 0}},
		{"robust", []float64{1, 2, 3, 4, 5}, NormRobust, []float64{-1, -0.5, 0, 0.5, 1}},
		{"robust zero iqr", []float64{4, 4, 4, 4}, NormRobust, []float64{0, 0, 0, 0}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(mustSignal(t, tc.in, 10), tc.method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tc.want, got.Values(), 1e-12)
		})
	}
}

func TestNormalize_UnknownMethod(t *testing.T) {
	t.Parallel()
	_, err := Normalize(mustSignal(t, []float64{1}, 1), "l2")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = ParseNormMethod("zscore")
	assert.NoError(t, err)
}

func TestNormalizeAxes_Independent(t *testing.T) {
	t.Parallel()
	axes := []Signal{
		mustSignal(t, []float64{0, 10}, 1),
		mustSignal(t, []float64{100, 300}, 1),
	}
	got, err := NormalizeAxes(axes, NormMinMax)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, []float64{0, 1}, a.Values())
	}
}
