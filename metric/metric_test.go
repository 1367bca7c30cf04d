package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Metrics(t *testing.T) {
	type TestCase struct {
		Name string
		F    func(lhs, rhs []float64) float64
		X, Y []float64
		Want float64
	}

	for _, tc := range []TestCase{
		{Name: "euclidean", F: Euclidean[float64], X: []float64{0, 0}, Y: []float64{3, 4}, Want: 5},
		{Name: "sq-euclidean", F: SqEuclidean[float64], X: []float64{0, 0}, Y: []float64{3, 4}, Want: 25},
		{Name: "manhattan", F: Manhattan[float64], X: []float64{1, -1}, Y: []float64{-2, 3}, Want: 7},
		{Name: "haversine same point", F: Haversine, X: []float64{13.4, 52.5}, Y: []float64{13.4, 52.5}, Want: 0},
		// Berlin to Paris, roughly 878km
		{Name: "haversine", F: Haversine, X: []float64{13.405, 52.52}, Y: []float64{2.3522, 48.8566}, Want: 877_500},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			assert.InDelta(t, tc.Want, tc.F(tc.X, tc.Y), 2_000)
			assert.InDelta(t, tc.F(tc.X, tc.Y), tc.F(tc.Y, tc.X), 1e-9)
		})
	}
}

func Test_OnKeys(t *testing.T) {
	m := OnKeys(Euclidean[float64], "x", "y")
	a := map[string]float64{"x": 0, "y": 0, "z": 100}
	b := map[string]float64{"x": 3, "y": 4, "z": -100}
	assert.InDelta(t, 5.0, m(a, b), 1e-12)
}

func Test_ByName(t *testing.T) {
	for _, name := range []string{"euclidean", "sq-euclidean", "manhattan", "haversine"} {
		m, ok := ByName(name)
		assert.True(t, ok, name)
		assert.NotNil(t, m)
	}

	_, ok := ByName("cosine")
	assert.False(t, ok)
}
