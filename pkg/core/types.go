package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Label int

const (
	ImproperForm = Label(0)
	ProperForm   = Label(1)
)

func (l Label) String() string {
	switch l {
	case ProperForm:
		return LabelProperForm
	case ImproperForm:
		return LabelImproperForm
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// 会话文件label列中可接受的文本值
const (
	LabelProperForm   = "proper_form"
	LabelImproperForm = "improper_form"
	LabelCorrectForm  = "correct_form"
	LabelWrongForm    = "incorrect_form"
)

func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LabelProperForm, LabelCorrectForm, "1":
		return ProperForm, nil
	case LabelImproperForm, LabelWrongForm, "0":
		return ImproperForm, nil
	default:
		return 0, fmt.Errorf("无法识别的标签%q", s)
	}
}

// FormGroup 标识某个运动的两组训练会话之一
type FormGroup string

const (
	ProperFormGroup   = FormGroup("proper_form")
	ImproperFormGroup = FormGroup("improper_form")
)

func (g FormGroup) Label() Label {
	if g == ProperFormGroup {
		return ProperForm
	}
	return ImproperForm
}

const (
	TimeColumn  = "time"
	LabelColumn = "label"
)

// Session 是一次运动的完整记录。Data按行存储，行顺序即时间顺序，Data[i][j]为通道Channels[j]在Time[i]时刻的值。
type Session struct {
	Name     string
	Channels []string
	Time     []float64
	Data     [][]float64
	Labels   []Label // 无标签会话为nil
}

func (s *Session) NumRows() int {
	return len(s.Data)
}

func (s *Session) Labeled() bool {
	return s.Labels != nil
}

// Column 复制出一个通道的所有值
func (s *Session) Column(idx int) []float64 {
	col := make([]float64, len(s.Data))
	for i, row := range s.Data {
		col[i] = row[idx]
	}
	return col
}

func (s *Session) ChannelIndex(name string) int {
	for i, c := range s.Channels {
		if c == name {
			return i
		}
	}
	return -1
}

func (s *Session) Validate() error {
	if len(s.Channels) == 0 {
		return fmt.Errorf("会话%s没有传感器通道", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Channels))
	for _, c := range s.Channels {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("会话%s中通道%s重复", s.Name, c)
		}
		seen[c] = struct{}{}
	}
	if s.Time != nil && len(s.Time) != len(s.Data) {
		return fmt.Errorf("会话%s的时间列长度%d与数据行数%d不一致", s.Name, len(s.Time), len(s.Data))
	}
	if s.Labels != nil && len(s.Labels) != len(s.Data) {
		return fmt.Errorf("会话%s的标签数%d与数据行数%d不一致", s.Name, len(s.Labels), len(s.Data))
	}
	for i, row := range s.Data {
		if len(row) != len(s.Channels) {
			return fmt.Errorf("会话%s第%d行有%d个值，应为%d个", s.Name, i, len(row), len(s.Channels))
		}
	}
	return nil
}

// Clone 深拷贝会话
func (s *Session) Clone() *Session {
	clone := &Session{
		Name:     s.Name,
		Channels: append([]string{}, s.Channels...),
		Data:     make([][]float64, len(s.Data)),
	}
	if s.Time != nil {
		clone.Time = append([]float64{}, s.Time...)
	}
	if s.Labels != nil {
		clone.Labels = append([]Label{}, s.Labels...)
	}
	for i, row := range s.Data {
		clone.Data[i] = append([]float64{}, row...)
	}
	return clone
}

// Align 按channels的顺序重排通道，返回新的会话。通道集合不同时返回ErrSchemaMismatch。
func (s *Session) Align(channels []string) (*Session, error) {
	if len(s.Channels) != len(channels) {
		return nil, errors.Wrap(ErrSchemaMismatch, fmt.Sprintf("会话%s的通道为%v，应为%v", s.Name, s.Channels, channels))
	}
	order := make([]int, len(channels))
	for i, c := range channels {
		idx := s.ChannelIndex(c)
		if idx == -1 {
			return nil, errors.Wrap(ErrSchemaMismatch, fmt.Sprintf("会话%s缺少通道%s", s.Name, c))
		}
		order[i] = idx
	}

	aligned := &Session{
		Name:     s.Name,
		Channels: append([]string{}, channels...),
		Time:     s.Time,
		Data:     make([][]float64, len(s.Data)),
		Labels:   s.Labels,
	}
	for ri, row := range s.Data {
		newRow := make([]float64, len(order))
		for i, idx := range order {
			newRow[i] = row[idx]
		}
		aligned.Data[ri] = newRow
	}
	return aligned, nil
}

// FeatureTable 是特征提取的结果。源会话无标签时Labels为nil
type FeatureTable struct {
	Channels []string // 生成特征的源通道顺序
	Columns  []string
	Rows     [][]float64
	Labels   []Label
}

func (t *FeatureTable) NumRows() int {
	return len(t.Rows)
}

type Prediction struct {
	Verdicts []Label
	Accuracy float64 // 预测为ProperForm的行所占比例，空会话为0
}

func NewPrediction(verdicts []Label) *Prediction {
	p := &Prediction{Verdicts: verdicts}
	if len(verdicts) == 0 {
		return p
	}
	proper := 0
	for _, v := range verdicts {
		if v == ProperForm {
			proper++
		}
	}
	p.Accuracy = float64(proper) / float64(len(verdicts))
	return p
}

type TrainingReport struct {
	Exercise        string    `json:"exercise"`
	HeldOutAccuracy float64   `json:"heldOutAccuracy"`
	TrainRows       int       `json:"trainRows"`
	TestRows        int       `json:"testRows"`
	WindowSize      int       `json:"windowSize"`
	Location        string    `json:"location"`
	TrainedAt       time.Time `json:"trainedAt"`
}

// SessionRecord 记录服务进程中一次已评分的上传
type SessionRecord struct {
	ID       uint      `json:"id"`
	Exercise string    `json:"exercise"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Rows     int       `json:"rows"`
	Accuracy float64   `json:"accuracy"`
}
