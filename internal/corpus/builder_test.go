package corpus

import (
	"fmt"
	"math"
	"testing"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/features"
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

func constSession(name string, channels []string, rows int, value float64) *core.Session {
	s := &core.Session{
		Name:     name,
		Channels: channels,
		Data:     make([][]float64, rows),
	}
	for i := range s.Data {
		row := make([]float64, len(channels))
		for j := range row {
			row[j] = value
		}
		s.Data[i] = row
	}
	return s
}

func nan() float64 {
	return math.NaN()
}

func TestBuild(t *testing.T) {
	channels := []string{"accel_x"}
	source := memorySource{
		core.ProperFormGroup: {
			constSession("p1", channels, 3, 0),
			constSession("p2", channels, 3, 0),
		},
		core.ImproperFormGroup: {
			constSession("i1", channels, 3, 10),
			constSession("i2", channels, 3, 10),
		},
	}

	table, err := Build(source, "Bicep curls", 2)
	require.NoError(t, err)

	assert.Equal(t, features.Columns(channels, 2), table.Columns)
	assert.Equal(t, 12, table.NumRows())
	require.Len(t, table.Labels, 12)
	for i := 0; i < 6; i++ {
		assert.Equal(t, core.ProperForm, table.Labels[i])
		assert.Equal(t, 0.0, table.Rows[i][0])
	}
	for i := 6; i < 12; i++ {
		assert.Equal(t, core.ImproperForm, table.Labels[i])
		assert.Equal(t, 10.0, table.Rows[i][0])
	}
	// 滞后特征跨会话连续
	assert.Equal(t, 0.0, table.Rows[6][1])
}

func TestBuildEmptyClass(t *testing.T) {
	channels := []string{"accel_x"}
	source := memorySource{
		core.ProperFormGroup: {constSession("p1", channels, 3, 0)},
	}
	_, err := Build(source, "Bicep curls", 2)
	assert.Equal(t, core.ErrEmptyTrainingClass, errors.Cause(err))

	source = memorySource{
		core.ImproperFormGroup: {constSession("i1", channels, 3, 0)},
	}
	_, err = Build(source, "Bicep curls", 2)
	assert.Equal(t, core.ErrEmptyTrainingClass, errors.Cause(err))
}

func TestBuildImputesEachSession(t *testing.T) {
	channels := []string{"accel_x"}
	p := constSession("p1", channels, 3, 1)
	p.Data[2][0] = nan()
	i := constSession("i1", channels, 3, 5)
	i.Data[0][0] = nan()
	source := memorySource{
		core.ProperFormGroup:   {p},
		core.ImproperFormGroup: {i},
	}

	table, err := Build(source, "Bicep curls", 1)
	require.NoError(t, err)
	// 边缘缺失值取同一会话内最近的有效值，而不是跨会话插值
	assert.Equal(t, 1.0, table.Rows[2][0])
	assert.Equal(t, 5.0, table.Rows[3][0])

	// 数据源中的会话保持原样
	assert.True(t, math.IsNaN(p.Data[2][0]))
	assert.True(t, math.IsNaN(i.Data[0][0]))
	assert.Nil(t, p.Labels)
	assert.Nil(t, i.Labels)
}

func TestBuildFromDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	write := func(group core.FormGroup, name, content string) {
		path := fmt.Sprintf("/data/Hammer curls/%s/%s", group, name)
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	write(core.ProperFormGroup, "a.csv", "time,accel_x,gyro_z\n0,1,2\n1,1,2\n")
	// 通道顺序不同的会话按第一个会话的顺序对齐
	write(core.ImproperFormGroup, "b.csv", "time,gyro_z,accel_x\n0,8,9\n")

	table, err := Build(datasource.NewDirSource(fs, "/data"), "Hammer curls", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []float64{9, 8}, table.Rows[2][:2])
	assert.Equal(t, []core.Label{core.ProperForm, core.ProperForm, core.ImproperForm}, table.Labels)
}

func TestConcatSchemaMismatch(t *testing.T) {
	a := constSession("a", []string{"accel_x"}, 2, 0)
	a.Labels = []core.Label{core.ProperForm, core.ProperForm}
	b := constSession("b", []string{"accel_y"}, 2, 0)
	b.Labels = []core.Label{core.ImproperForm, core.ImproperForm}

	_, err := Concat("x", []*core.Session{a, b})
	assert.Equal(t, core.ErrSchemaMismatch, errors.Cause(err))

	_, err = Concat("x", nil)
	assert.Error(t, err)
}

func TestConcatRequiresLabels(t *testing.T) {
	a := constSession("a", []string{"accel_x"}, 2, 0)
	_, err := Concat("x", []*core.Session{a})
	assert.Error(t, err)
}
