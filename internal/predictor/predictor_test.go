package predictor

import (
	"math"
	"testing"
	"time"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/internal/features"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/packagewjx/form-classifier/internal/trainer"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource map[core.FormGroup][]*core.Session

func (m memorySource) Sessions(_ string, group core.FormGroup) ([]*core.Session, error) {
	return m[group], nil
}

func constSession(name string, channels []string, rows int, values ...float64) *core.Session {
	s := &core.Session{Name: name, Channels: channels, Data: make([][]float64, rows)}
	for i := range s.Data {
		s.Data[i] = append([]float64{}, values...)
	}
	return s
}

func newTrainedPredictor(t *testing.T) (*Predictor, store.ClassifierStore) {
	s, err := store.NewFileStore(afero.NewMemMapFs(), "/models")
	require.NoError(t, err)

	channels := []string{"accel_x", "gyro_z"}
	source := memorySource{
		core.ProperFormGroup: {
			constSession("p1", channels, 3, 0, 1),
			constSession("p2", channels, 3, 0, 1),
		},
		core.ImproperFormGroup: {
			constSession("i1", channels, 3, 10, 1),
			constSession("i2", channels, 3, 10, 1),
		},
	}
	_, report, err := trainer.NewTrainer(source, s, func(string) int { return 2 }).Train("Bicep curls")
	require.NoError(t, err)
	require.GreaterOrEqual(t, report.HeldOutAccuracy, 0.9)

	return NewPredictor(s), s
}

func TestPredict(t *testing.T) {
	p, _ := newTrainedPredictor(t)

	session := constSession("new", []string{"accel_x", "gyro_z"}, 3, 0, 1)
	prediction, err := p.Predict("Bicep curls", session)
	require.NoError(t, err)
	assert.Len(t, prediction.Verdicts, 3)
	assert.GreaterOrEqual(t, prediction.Accuracy, 0.67)

	session = constSession("bad", []string{"accel_x", "gyro_z"}, 4, 10, 1)
	prediction, err = p.Predict("Bicep curls", session)
	require.NoError(t, err)
	assert.Len(t, prediction.Verdicts, 4)
	assert.Less(t, prediction.Accuracy, 0.5)
}

func TestPredictReorderedChannels(t *testing.T) {
	p, _ := newTrainedPredictor(t)

	session := constSession("new", []string{"gyro_z", "accel_x"}, 3, 1, 0)
	prediction, err := p.Predict("Bicep curls", session)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, prediction.Accuracy, 0.67)
	// 原会话不被修改
	assert.Equal(t, []string{"gyro_z", "accel_x"}, session.Channels)
	assert.Equal(t, []float64{1, 0}, session.Data[0])
}

func TestPredictEmptySession(t *testing.T) {
	p, _ := newTrainedPredictor(t)

	prediction, err := p.Predict("Bicep curls", constSession("empty", []string{"accel_x", "gyro_z"}, 0))
	require.NoError(t, err)
	assert.Empty(t, prediction.Verdicts)
	assert.Equal(t, 0.0, prediction.Accuracy)
}

func TestPredictModelNotFound(t *testing.T) {
	p, _ := newTrainedPredictor(t)
	_, err := p.Predict("Hammer curls", constSession("s", []string{"accel_x", "gyro_z"}, 2, 0, 1))
	assert.Equal(t, core.ErrModelNotFound, errors.Cause(err))
}

func TestPredictSchemaMismatch(t *testing.T) {
	p, _ := newTrainedPredictor(t)

	for name, channels := range map[string][]string{
		"missing": {"accel_x"},
		"extra":   {"accel_x", "gyro_z", "accel_y"},
		"renamed": {"accel_x", "gyro_y"},
	} {
		t.Run(name, func(t *testing.T) {
			values := make([]float64, len(channels))
			_, err := p.Predict("Bicep curls", constSession(name, channels, 2, values...))
			assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))
		})
	}
}

func TestPredictBlankChannel(t *testing.T) {
	p, _ := newTrainedPredictor(t)

	_, err := p.Predict("Bicep curls", constSession("blank", []string{"accel_x", "gyro_z"}, 3, math.NaN(), 1))
	assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))
	assert.Contains(t, err.Error(), "accel_x")

	// 部分缺失的值会被插值
	session := constSession("gap", []string{"accel_x", "gyro_z"}, 3, 0, 1)
	session.Data[1][0] = math.NaN()
	prediction, err := p.Predict("Bicep curls", session)
	require.NoError(t, err)
	assert.Len(t, prediction.Verdicts, 3)
	assert.True(t, math.IsNaN(session.Data[1][0]))
}

func TestPredictFeatureColumnsMismatch(t *testing.T) {
	s, err := store.NewFileStore(afero.NewMemMapFs(), "/models")
	require.NoError(t, err)

	tree := classify.NewDecisionTree(classify.DefaultTreeOptions())
	columns := features.Columns([]string{"accel_x"}, 1)
	require.NoError(t, tree.Fit([][]float64{{0, 0, 0, 0}, {10, 0, 0, 0}},
		[]core.Label{core.ProperForm, core.ImproperForm}))
	columns[1] = "accel_x_lag9"
	require.NoError(t, s.Save(&classify.Model{
		Exercise:       "Lateral raises",
		Algorithm:      classify.DecisionTree,
		WindowSize:     1,
		Channels:       []string{"accel_x"},
		FeatureColumns: columns,
		TrainedAt:      time.Now(),
		Classifier:     tree,
	}))

	_, err = NewPredictor(s).Predict("Lateral raises", constSession("s", []string{"accel_x"}, 2, 0))
	assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))
}
