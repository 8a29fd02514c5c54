package utils

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestWritePredictions(t *testing.T) {
	builder := &strings.Builder{}
	session := &core.Session{
		Channels: []string{"accel_x"},
		Time:     []float64{0, 0.05},
		Data:     [][]float64{{1}, {2}},
	}
	prediction := core.NewPrediction([]core.Label{core.ProperForm, core.ImproperForm})

	err := WritePredictions(builder, session, prediction, 2)
	assert.NoError(t, err)
	assert.Equal(t, "time,prediction\n0.00,proper_form\n0.05,improper_form\n", builder.String())

	builder.Reset()
	session.Time = nil
	assert.NoError(t, WritePredictions(builder, session, prediction, 2))
	assert.Equal(t, "prediction\nproper_form\nimproper_form\n", builder.String())

	assert.Error(t, WritePredictions(builder, session, core.NewPrediction(nil), 2))
}

func TestCounters(t *testing.T) {
	reader := &ReadCounter{Reader: strings.NewReader("hello")}
	data, err := ioutil.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), reader.Count)

	buf := &bytes.Buffer{}
	writer := &WriterCounter{Writer: buf}
	_, err = writer.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), writer.Count)
}
