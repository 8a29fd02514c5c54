package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

// ReadSession 从CSV读取一个会话
func ReadSession(in io.Reader, name string) (*core.Session, error) {
	return NewSessionLoader(CSV).Load(in, name)
}

type csvLoader struct {
}

func isTimeColumn(header string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), core.TimeColumn)
}

func isLabelColumn(header string) bool {
	return strings.ToLower(strings.TrimSpace(header)) == core.LabelColumn
}

// Load 读取带表头的CSV。time列与label列可选，其余列均为数值型传感器通道。空值与NaN读为NaN。
func (c *csvLoader) Load(in io.Reader, name string) (*core.Session, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("会话%s没有表头", name)
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("读取会话%s的表头出错", name))
	}

	timeIdx := -1
	labelIdx := -1
	channelIdx := make([]int, 0, len(header))
	session := &core.Session{Name: name}
	for i, h := range header {
		switch {
		case timeIdx == -1 && isTimeColumn(h):
			timeIdx = i
		case labelIdx == -1 && isLabelColumn(h):
			labelIdx = i
		case strings.TrimSpace(h) == "":
			return nil, fmt.Errorf("会话%s第%d列没有列名", name, i)
		default:
			channelIdx = append(channelIdx, i)
			session.Channels = append(session.Channels, strings.TrimSpace(h))
		}
	}
	if len(channelIdx) == 0 {
		return nil, fmt.Errorf("会话%s没有传感器通道", name)
	}

	session.Data = make([][]float64, 0, 64)
	if timeIdx != -1 {
		session.Time = make([]float64, 0, 64)
	}
	if labelIdx != -1 {
		session.Labels = make([]core.Label, 0, 64)
	}

	var record []string
	line := 1
	for record, err = reader.Read(); err == nil; record, err = reader.Read() {
		line++

		if timeIdx != -1 {
			ts, err := parseValue(record[timeIdx])
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("会话%s第%d行时间有误", name, line))
			}
			session.Time = append(session.Time, ts)
		}
		if labelIdx != -1 {
			label, err := core.ParseLabel(record[labelIdx])
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("会话%s第%d行标签有误", name, line))
			}
			session.Labels = append(session.Labels, label)
		}

		row := make([]float64, len(channelIdx))
		for j, ci := range channelIdx {
			f, err := parseValue(record[ci])
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("会话%s第%d行%s列数据有误，数据为[%v]",
					name, line, session.Channels[j], record[ci]))
			}
			row[j] = f
		}
		session.Data = append(session.Data, row)
	}

	if err != io.EOF {
		return nil, errors.Wrap(err, fmt.Sprintf("读取会话%s出错", name))
	}

	return session, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
