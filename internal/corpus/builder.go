package corpus

import (
	"fmt"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/features"
	"github.com/packagewjx/form-classifier/internal/preprocess"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Build 读取某个运动的正确与错误动作会话，逐个预处理并标注为1与0，按先正确后错误的顺序拼接后整体做一次特征提取。
// 任一类别没有会话时返回core.ErrEmptyTrainingClass。
func Build(source datasource.SessionSource, exercise string, windowSize int) (*core.FeatureTable, error) {
	logger := log.WithFields(log.Fields{"component": "corpus", "exercise": exercise})

	groups := []core.FormGroup{core.ProperFormGroup, core.ImproperFormGroup}
	sessions := make([]*core.Session, 0)
	for _, group := range groups {
		logger.Infof("正在读取%s组训练数据", group)
		list, err := source.Sessions(exercise, group)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("读取%s的%s组会话出错", exercise, group))
		}
		if len(list) == 0 {
			return nil, errors.Wrap(core.ErrEmptyTrainingClass, fmt.Sprintf("%s的%s组没有会话", exercise, group))
		}
		for _, s := range list {
			if err := s.Validate(); err != nil {
				return nil, err
			}
			// 数据源返回的会话可能被缓存，不能原地修改
			s = s.Clone()
			preprocess.Default().Preprocess(s)
			labelSession(s, group.Label())
			sessions = append(sessions, s)
		}
	}

	combined, err := Concat(exercise, sessions)
	if err != nil {
		return nil, err
	}

	logger.Infof("共%d个会话%d行数据，正在提取特征", len(sessions), combined.NumRows())
	table, err := features.Extract(combined, windowSize)
	if err != nil {
		return nil, errors.Wrap(err, "提取特征出错")
	}
	return table, nil
}

func labelSession(s *core.Session, label core.Label) {
	s.Labels = make([]core.Label, s.NumRows())
	for i := range s.Labels {
		s.Labels[i] = label
	}
}

// Concat 按顺序拼接会话。所有会话的通道集合必须与第一个会话相同，列顺序以第一个会话为准。
func Concat(name string, sessions []*core.Session) (*core.Session, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("没有可拼接的会话")
	}
	first := sessions[0]
	if err := first.Validate(); err != nil {
		return nil, err
	}

	result := &core.Session{
		Name:     name,
		Channels: append([]string{}, first.Channels...),
		Data:     make([][]float64, 0),
		Labels:   make([]core.Label, 0),
	}
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if !s.Labeled() {
			return nil, fmt.Errorf("会话%s没有标签", s.Name)
		}
		aligned, err := s.Align(result.Channels)
		if err != nil {
			return nil, err
		}
		result.Data = append(result.Data, aligned.Data...)
		result.Labels = append(result.Labels, aligned.Labels...)
	}
	return result, nil
}
