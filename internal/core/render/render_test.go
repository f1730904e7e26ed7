package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(5, 0))
}

func TestPercentEvenSplit(t *testing.T) {
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 50.0, Percent(2, 4))
}

func TestPercentRoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 14.3, Percent(1, 7))
}

func TestBarsZeroTotalHasNoArtifacts(t *testing.T) {
	bars := Bars(map[string]int{"tea": 0, "coffee": 0}, 0)
	require.Len(t, bars, 2)
	for _, b := range bars {
		assert.Equal(t, 0.0, b.Percent)
	}
}

func TestBarsStableOrderAndValues(t *testing.T) {
	bars := Bars(map[string]int{"B": 1, "A": 1}, 2)
	require.Len(t, bars, 2)
	assert.Equal(t, "A", bars[0].Label)
	assert.Equal(t, "B", bars[1].Label)
	assert.Equal(t, 50.0, bars[0].Percent)
	assert.Equal(t, 50.0, bars[1].Percent)
}

func TestDatasetsDeriveFromSameMapping(t *testing.T) {
	results := map[string]int{"cats": 3, "dogs": 6, "birds": 1}
	distribution, ranked := Datasets(results, 10)

	require.Equal(t, []string{"birds", "cats", "dogs"}, distribution.Labels)
	assert.Equal(t, []float64{1, 3, 6}, distribution.Values)

	require.Equal(t, []string{"dogs", "cats", "birds"}, ranked.Labels)
	assert.Equal(t, []float64{60.0, 30.0, 10.0}, ranked.Values)
}

func TestDatasetsRankedTieKeepsLabelOrder(t *testing.T) {
	_, ranked := Datasets(map[string]int{"b": 2, "a": 2}, 4)
	assert.Equal(t, []string{"a", "b"}, ranked.Labels)
}
