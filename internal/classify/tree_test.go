package classify

import (
	"math"
	"testing"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionTreeSeparable(t *testing.T) {
	x := [][]float64{{0, 5}, {1, 5}, {2, 5}, {10, 5}, {11, 5}, {12, 5}}
	y := []core.Label{core.ProperForm, core.ProperForm, core.ProperForm,
		core.ImproperForm, core.ImproperForm, core.ImproperForm}

	tree := NewDecisionTree(DefaultTreeOptions())
	require.NoError(t, tree.Fit(x, y))

	assert.Equal(t, 2, tree.NumFeatures())
	assert.Equal(t, 3, len(tree.Nodes))
	assert.Equal(t, 0, tree.Nodes[0].Feature)
	assert.Equal(t, 6.0, tree.Nodes[0].Threshold)

	predicted, err := tree.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, predicted)

	predicted, err = tree.Predict([][]float64{{-3, 0}, {100, 0}})
	require.NoError(t, err)
	assert.Equal(t, []core.Label{core.ProperForm, core.ImproperForm}, predicted)
}

func TestDecisionTreeXor(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []core.Label{core.ImproperForm, core.ProperForm, core.ProperForm, core.ImproperForm}

	tree := NewDecisionTree(DefaultTreeOptions())
	require.NoError(t, tree.Fit(x, y))
	predicted, err := tree.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, predicted)
	assert.NoError(t, tree.Validate())
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []core.Label{core.ImproperForm, core.ProperForm, core.ProperForm, core.ImproperForm}

	tree := NewDecisionTree(TreeOptions{MaxDepth: 1})
	require.NoError(t, tree.Fit(x, y))
	for _, node := range tree.Nodes[1:] {
		assert.True(t, node.Leaf)
	}
}

func TestDecisionTreeIdenticalRows(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}}
	y := []core.Label{core.ProperForm, core.ImproperForm, core.ProperForm}

	tree := NewDecisionTree(DefaultTreeOptions())
	require.NoError(t, tree.Fit(x, y))
	assert.Equal(t, 1, len(tree.Nodes))
	assert.Equal(t, core.ProperForm, tree.Nodes[0].Class)
}

func TestDecisionTreeDegenerate(t *testing.T) {
	tree := NewDecisionTree(DefaultTreeOptions())

	err := tree.Fit(nil, nil)
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))

	err = tree.Fit([][]float64{{1}, {2}}, []core.Label{core.ProperForm, core.ProperForm})
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))

	err = tree.Fit([][]float64{{1}, {math.NaN()}}, []core.Label{core.ProperForm, core.ImproperForm})
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))

	err = tree.Fit([][]float64{{1}, {2, 3}}, []core.Label{core.ProperForm, core.ImproperForm})
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))
}

func TestDecisionTreePredictErrors(t *testing.T) {
	tree := NewDecisionTree(DefaultTreeOptions())
	_, err := tree.Predict([][]float64{{1}})
	assert.Error(t, err)

	require.NoError(t, tree.Fit([][]float64{{1}, {2}}, []core.Label{core.ProperForm, core.ImproperForm}))
	_, err = tree.Predict([][]float64{{1, 2}})
	assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))
}

func TestCheckFinite(t *testing.T) {
	err := CheckFinite([]string{"accel_x", "accel_y"}, [][]float64{{1, 2}, {3, math.Inf(1)}})
	require.Error(t, err)
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))
	assert.Contains(t, err.Error(), "accel_y")

	assert.NoError(t, CheckFinite(nil, [][]float64{{1, 2}}))
}
