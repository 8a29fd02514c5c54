package datasource

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// SplitLabeled 按label列将带标签的会话拆分为标准动作与错误动作两个文件，写入训练数据目录，
// 即<root>/<exercise>/proper_form/<name>.csv与<root>/<exercise>/improper_form/<name>.csv。
// 没有行的组不生成文件。返回每组写入的行数。
func SplitLabeled(fs afero.Fs, root, exercise, name string, session *core.Session) (map[core.FormGroup]int, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, errors.Wrap(err, exercise)
	}
	if err := core.ValidateExercise(name); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("文件名%q不合法", name))
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if !session.Labeled() {
		return nil, fmt.Errorf("会话%s没有label列，无法拆分", session.Name)
	}

	groups := map[core.FormGroup][]int{}
	for i, label := range session.Labels {
		group := core.ImproperFormGroup
		if label == core.ProperForm {
			group = core.ProperFormGroup
		}
		groups[group] = append(groups[group], i)
	}

	result := make(map[core.FormGroup]int, len(groups))
	for group, rows := range groups {
		dir := filepath.Join(root, exercise, string(group))
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "创建"+dir+"失败")
		}
		path := filepath.Join(dir, name+sessionFileExt)
		if err := writeRows(fs, path, session, rows); err != nil {
			return nil, err
		}
		result[group] = len(rows)
	}
	return result, nil
}

func writeRows(fs afero.Fs, path string, session *core.Session, rows []int) error {
	file, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "创建"+path+"失败")
	}
	defer func() {
		_ = file.Close()
	}()

	buffered := bufio.NewWriter(file)
	writer := csv.NewWriter(buffered)
	withTime := session.Time != nil

	header := make([]string, 0, len(session.Channels)+1)
	if withTime {
		header = append(header, core.TimeColumn)
	}
	header = append(header, session.Channels...)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, fmt.Sprintf("写入%s发生错误", path))
	}

	record := make([]string, len(header))
	for _, i := range rows {
		offset := 0
		if withTime {
			record[0] = strconv.FormatFloat(session.Time[i], 'g', -1, 64)
			offset = 1
		}
		for j, v := range session.Data[i] {
			record[offset+j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, fmt.Sprintf("写入%s发生错误", path))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, fmt.Sprintf("写入%s发生错误", path))
	}
	return buffered.Flush()
}
