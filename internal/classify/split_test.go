package classify

import (
	"sort"
	"testing"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	train, test, err := TrainTestSplit(12, DefaultTestFraction, DefaultSplitSeed)
	require.NoError(t, err)
	assert.Equal(t, 9, len(train))
	assert.Equal(t, 3, len(test))

	all := append(append([]int{}, train...), test...)
	sort.Ints(all)
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}

	train2, test2, err := TrainTestSplit(12, DefaultTestFraction, DefaultSplitSeed)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestTrainTestSplitErrors(t *testing.T) {
	_, _, err := TrainTestSplit(1, DefaultTestFraction, DefaultSplitSeed)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(0, DefaultTestFraction, DefaultSplitSeed)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(10, 1.5, DefaultSplitSeed)
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	table := &core.FeatureTable{
		Columns: []string{"a"},
		Rows:    [][]float64{{1}, {2}, {3}},
		Labels:  []core.Label{core.ProperForm, core.ImproperForm, core.ProperForm},
	}
	x, y := Subset(table, []int{2, 0})
	assert.Equal(t, [][]float64{{3}, {1}}, x)
	assert.Equal(t, []core.Label{core.ProperForm, core.ProperForm}, y)
}

func TestAccuracyScore(t *testing.T) {
	truth := []core.Label{core.ProperForm, core.ImproperForm, core.ProperForm, core.ImproperForm}
	assert.Equal(t, 1.0, AccuracyScore(truth, truth))
	assert.Equal(t, 0.5, AccuracyScore(truth, []core.Label{core.ProperForm, core.ProperForm, core.ProperForm, core.ProperForm}))
	assert.Equal(t, 0.0, AccuracyScore(nil, nil))
}
