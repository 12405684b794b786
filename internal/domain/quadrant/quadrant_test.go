package quadrant_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/stretchr/testify/require"
)

func TestClassify_Corners(t *testing.T) {
	cases := []struct {
		point quadrant.Point
		want  quadrant.Label
	}{
		{quadrant.Point{X: 0, Y: 0}, quadrant.Degenerative},
		{quadrant.Point{X: 5, Y: 1}, quadrant.LatentPotential},
		{quadrant.Point{X: 1, Y: 5}, quadrant.Unsustainable},
		{quadrant.Point{X: quadrant.Bound, Y: quadrant.Bound}, quadrant.Thriving},
	}
	for _, tc := range cases {
		got, ok := quadrant.Classify(tc.point)
		require.True(t, ok)
		require.Equal(t, tc.want, got, "point %+v", tc.point)
	}
}

func TestClassify_MidlineBelongsLowerLeft(t *testing.T) {
	got, ok := quadrant.Classify(quadrant.Point{X: quadrant.Midpoint, Y: quadrant.Midpoint})
	require.True(t, ok)
	require.Equal(t, quadrant.Degenerative, got)

	got, _ = quadrant.Classify(quadrant.Point{X: quadrant.Midpoint, Y: 5})
	require.Equal(t, quadrant.Unsustainable, got)

	got, _ = quadrant.Classify(quadrant.Point{X: 5, Y: quadrant.Midpoint})
	require.Equal(t, quadrant.LatentPotential, got)
}

func TestClassify_OutOfDomain(t *testing.T) {
	for _, p := range []quadrant.Point{
		{X: -0.1, Y: 1},
		{X: 1, Y: quadrant.Bound + 0.01},
		{X: math.NaN(), Y: 1},
		{X: math.Inf(1), Y: 1},
	} {
		_, ok := quadrant.Classify(p)
		require.False(t, ok, "point %+v", p)
	}
}

func TestRegions_PartitionDomain(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	regions := quadrant.Regions()

	for i := 0; i < 10000; i++ {
		p := quadrant.Point{X: rng.Float64() * quadrant.Bound, Y: rng.Float64() * quadrant.Bound}
		matches := 0
		var matched quadrant.Label
		for _, r := range regions {
			if r.Contains(p) {
				matches++
				matched = r.Label
			}
		}
		require.Equal(t, 1, matches, "point %+v", p)

		label, ok := quadrant.Classify(p)
		require.True(t, ok)
		require.Equal(t, matched, label)
	}
}

func TestPoint_Clamp(t *testing.T) {
	p := quadrant.Point{X: -2, Y: math.Inf(1)}.Clamp()
	require.Equal(t, quadrant.Point{X: 0, Y: quadrant.Bound}, p)

	p = quadrant.Point{X: math.NaN(), Y: 1}.Clamp()
	require.Equal(t, 0.0, p.X)
}

func TestLabel_Description(t *testing.T) {
	for _, r := range quadrant.Regions() {
		require.NotEmpty(t, r.Label.Description())
	}
	require.Empty(t, quadrant.Label("other").Description())
}
