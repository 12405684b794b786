package score_test

import (
	"math"
	"testing"

	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/stretchr/testify/require"
)

func TestComputeRe_Midpoint(t *testing.T) {
	re := score.ComputeRe(score.DefaultMetrics())
	require.InDelta(t, 625.0/15.0, re.ReRaw, 1e-9)
	require.InDelta(t, math.Log10(625.0/15.0+1), re.ReLog, 1e-12)
	require.InDelta(t, 1.630, re.ReLog, 0.001)
}

func TestComputeRe_ZeroDenominator(t *testing.T) {
	m := score.DefaultMetrics()
	m.X, m.Fg, m.Omega = 0, 0, 0

	re := score.ComputeRe(m)
	require.True(t, math.IsInf(re.ReRaw, 1))
	require.True(t, math.IsInf(re.ReLog, 1))
}

func TestComputeRe_ZeroNumerator(t *testing.T) {
	m := score.DefaultMetrics()
	m.L = 0

	re := score.ComputeRe(m)
	require.Equal(t, 0.0, re.ReRaw)
	require.Equal(t, 0.0, re.ReLog)
}

func TestComputeRe_Monotonic(t *testing.T) {
	values := []float64{0.01, 0.5, 1, 2.5, 5, 7.5, 10}

	for _, f := range score.RegenerativeFactors() {
		prev := math.Inf(-1)
		for _, v := range values {
			re := score.ComputeRe(score.DefaultMetrics().With(f, v))
			require.GreaterOrEqual(t, re.ReLog, prev, "factor %s at %v", f, v)
			prev = re.ReLog
		}
	}

	for _, f := range score.PressureFactors() {
		prev := math.Inf(1)
		for _, v := range values {
			re := score.ComputeRe(score.DefaultMetrics().With(f, v))
			require.LessOrEqual(t, re.ReLog, prev, "factor %s at %v", f, v)
			prev = re.ReLog
		}
	}
}

func TestComputeRx(t *testing.T) {
	rx := score.ComputeRx([]score.Indicator{{ID: 1, Value: 6}, {ID: 2, Value: 8}})
	require.Equal(t, 7.0, rx.Rx)
	require.InDelta(t, 3.864, rx.RxScaled, 1e-9)
	require.Equal(t, rx.Rx*score.RxScale, rx.RxScaled)
}

func TestComputeRx_Empty(t *testing.T) {
	rx := score.ComputeRx(nil)
	require.Equal(t, score.Rx{}, rx)
}

func TestComputeRx_NaNCountsAsZero(t *testing.T) {
	rx := score.ComputeRx([]score.Indicator{{ID: 1, Value: math.NaN()}, {ID: 2, Value: 8}})
	require.False(t, math.IsNaN(rx.Rx))
	require.Equal(t, 4.0, rx.Rx)
}

func TestUpperBoundMatchesScale(t *testing.T) {
	require.InDelta(t, 5.52, score.UpperBound, 1e-12)
	require.InDelta(t, score.UpperBound, score.ComputeRx([]score.Indicator{{Value: score.MaxValue}}).RxScaled, 1e-12)
}

func TestCompute(t *testing.T) {
	s := score.Compute(score.DefaultMetrics(), []score.Indicator{{ID: 1, Value: 6}, {ID: 2, Value: 8}})
	require.InDelta(t, 1.630, s.ReLog, 0.001)
	require.InDelta(t, 3.864, s.RxScaled, 1e-9)
}
