package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/history"
	"github.com/packagewjx/form-classifier/internal/metrics"
	"github.com/packagewjx/form-classifier/internal/predictor"
	internalserver "github.com/packagewjx/form-classifier/internal/server"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/packagewjx/form-classifier/internal/trainer"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/packagewjx/form-classifier/pkg/server"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	properCsv   = "time,accel_x\n0,0\n0.1,0\n0.2,0\n"
	improperCsv = "time,accel_x\n0,10\n0.1,10\n0.2,10\n"
)

func newTestApi(t *testing.T) (server.API, func()) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 2; i++ {
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/data/Lateral raises/proper_form/%d.csv", i), []byte(properCsv), 0644))
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/data/Lateral raises/improper_form/%d.csv", i), []byte(improperCsv), 0644))
	}
	classifierStore, err := store.NewFileStore(fs, "/models")
	require.NoError(t, err)
	manager, reg := metrics.NewTestManagerAndRegistry()

	s, err := internalserver.NewServer(&internalserver.ServerConfig{
		Port:      internalserver.DefaultPort,
		Exercises: []string{"Lateral raises"},
		DataDir:   "/data",
	}, &internalserver.Dependencies{
		Trainer:   trainer.NewTrainer(datasource.NewDirSource(fs, "/data"), classifierStore, func(string) int { return 2 }),
		Predictor: predictor.NewPredictor(classifierStore),
		History:   history.NewMemoryRepository(),
		Fs:        fs,
		Metrics:   manager,
		Gatherer:  reg,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	return NewApiClient(ts.URL+"/", ts.Client()), ts.Close
}

func TestApiClient(t *testing.T) {
	api, closeFunc := newTestApi(t)
	defer closeFunc()

	_, err := api.ScoreSession("Lateral raises", "", time.Now(), strings.NewReader(properCsv))
	assert.Equal(t, core.ErrModelNotFound, errors.Cause(err))

	_, err = api.Dashboard("Lateral raises")
	assert.Equal(t, server.ErrNoSessions, errors.Cause(err))

	report, err := api.Train("Lateral raises")
	require.NoError(t, err)
	assert.Equal(t, "Lateral raises", report.Exercise)
	assert.GreaterOrEqual(t, report.HeldOutAccuracy, 0.9)

	date := time.Date(2021, time.April, 1, 0, 0, 0, 0, time.Local)
	result, err := api.ScoreSession("Lateral raises", "", date, strings.NewReader(properCsv))
	require.NoError(t, err)
	assert.Equal(t, "Lateral raises_20210401", result.Record.Name)
	assert.Equal(t, []core.Label{core.ProperForm, core.ProperForm, core.ProperForm}, result.Verdicts)

	_, err = api.ScoreSession("Lateral raises", "bad", date, strings.NewReader("time,gyro_z\n0,1\n"))
	assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))

	dashboard, err := api.Dashboard("Lateral raises")
	require.NoError(t, err)
	assert.Len(t, dashboard.Records, 1)
	assert.True(t, dashboard.Records[0].Date.Equal(date))

	exercises, err := api.ListExercises()
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.True(t, exercises[0].HasData)

	_, err = api.Train("Push ups")
	assert.Equal(t, server.ErrExerciseNotFound, errors.Cause(err))
}

func TestDecodeError(t *testing.T) {
	err := decodeError(http.StatusInternalServerError, []byte("not json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not json")

	err = decodeError(http.StatusUnprocessableEntity, []byte(`{"code":"degenerate_fit","message":"accel_y"}`))
	assert.Equal(t, core.ErrDegenerateFit, errors.Cause(err))

	err = decodeError(http.StatusRequestEntityTooLarge, []byte(`{"code":"upload_too_large","message":"上限为16字节"}`))
	assert.Equal(t, server.ErrUploadTooLarge, errors.Cause(err))
}
