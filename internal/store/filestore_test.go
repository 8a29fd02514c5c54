package store

import (
	"sync"
	"testing"
	"time"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, exercise string, accuracy float64) *classify.Model {
	tree := classify.NewDecisionTree(classify.DefaultTreeOptions())
	require.NoError(t, tree.Fit([][]float64{{0}, {10}}, []core.Label{core.ProperForm, core.ImproperForm}))
	return &classify.Model{
		Exercise:        exercise,
		Algorithm:       classify.DecisionTree,
		WindowSize:      5,
		Channels:        []string{"accel_x"},
		FeatureColumns:  []string{"accel_x"},
		HeldOutAccuracy: accuracy,
		TrainedAt:       time.Now(),
		Classifier:      tree,
	}
}

func newTestFileStore(t *testing.T) (ClassifierStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	s, err := NewFileStore(fs, "/models")
	require.NoError(t, err)
	return s, fs
}

func TestFileStoreSaveLoad(t *testing.T) {
	s, _ := newTestFileStore(t)

	exists, err := s.Exists("Bicep curls")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Save(testModel(t, "Bicep curls", 0.5)))
	exists, err = s.Exists("Bicep curls")
	require.NoError(t, err)
	assert.True(t, exists)

	model, err := s.Load("Bicep curls")
	require.NoError(t, err)
	assert.Equal(t, 0.5, model.HeldOutAccuracy)
	assert.Equal(t, "/models/Bicep curls_model.json", s.Location("Bicep curls"))

	// 后写覆盖先写
	require.NoError(t, s.Save(testModel(t, "Bicep curls", 0.9)))
	model, err = s.Load("Bicep curls")
	require.NoError(t, err)
	assert.Equal(t, 0.9, model.HeldOutAccuracy)
}

func TestFileStoreNotFound(t *testing.T) {
	s, _ := newTestFileStore(t)
	_, err := s.Load("Hammer curls")
	assert.Equal(t, core.ErrModelNotFound, errors.Cause(err))
}

func TestFileStoreMalformed(t *testing.T) {
	s, fs := newTestFileStore(t)
	require.NoError(t, afero.WriteFile(fs, s.Location("Lateral raises"), []byte("{broken"), 0644))
	_, err := s.Load("Lateral raises")
	assert.Equal(t, core.ErrMalformedModel, errors.Cause(err))
}

func TestFileStoreInvalidExercise(t *testing.T) {
	s, _ := newTestFileStore(t)
	err := s.Save(testModel(t, "../escape", 1))
	assert.Equal(t, core.ErrInvalidExercise, errors.Cause(err))
	_, err = s.Load("a/b")
	assert.Equal(t, core.ErrInvalidExercise, errors.Cause(err))
}

func TestFileStoreConcurrentSaveLoad(t *testing.T) {
	s, _ := newTestFileStore(t)
	require.NoError(t, s.Save(testModel(t, "Bicep curls", 0)))

	models := make([]*classify.Model, 20)
	for i := range models {
		models[i] = testModel(t, "Bicep curls", float64(i)/20)
	}

	wg := sync.WaitGroup{}
	errCh := make(chan error, 2*len(models))
	for _, model := range models {
		wg.Add(2)
		go func(model *classify.Model) {
			defer wg.Done()
			errCh <- s.Save(model)
		}(model)
		go func() {
			defer wg.Done()
			_, err := s.Load("Bicep curls")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("file")
	assert.NoError(t, err)
	assert.Equal(t, BackendFile, b)
	_, err = ParseBackend("s3")
	assert.Error(t, err)
}
