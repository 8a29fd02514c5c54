package classify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

// Model 是某个运动训练好的分类器，以及拟合时使用的窗口大小、通道顺序与特征列顺序
type Model struct {
	Exercise        string
	Algorithm       AlgorithmType
	WindowSize      int
	Channels        []string
	FeatureColumns  []string
	HeldOutAccuracy float64
	TrainedAt       time.Time
	Classifier      Classifier
}

type modelEnvelope struct {
	Exercise        string          `json:"exercise"`
	Algorithm       AlgorithmType   `json:"algorithm"`
	WindowSize      int             `json:"windowSize"`
	Channels        []string        `json:"channels"`
	FeatureColumns  []string        `json:"featureColumns"`
	HeldOutAccuracy float64         `json:"heldOutAccuracy"`
	TrainedAt       time.Time       `json:"trainedAt"`
	Classifier      json.RawMessage `json:"classifier"`
}

type validator interface {
	Validate() error
}

func EncodeModel(m *Model) ([]byte, error) {
	if m.Classifier == nil {
		return nil, fmt.Errorf("模型%s没有分类器", m.Exercise)
	}
	payload, err := json.Marshal(m.Classifier)
	if err != nil {
		return nil, errors.Wrap(err, "序列化分类器出错")
	}
	return json.Marshal(&modelEnvelope{
		Exercise:        m.Exercise,
		Algorithm:       m.Algorithm,
		WindowSize:      m.WindowSize,
		Channels:        m.Channels,
		FeatureColumns:  m.FeatureColumns,
		HeldOutAccuracy: m.HeldOutAccuracy,
		TrainedAt:       m.TrainedAt,
		Classifier:      payload,
	})
}

// DecodeModel 反序列化模型。数据无法解析或与特征列不符时返回ErrMalformedModel。
func DecodeModel(data []byte) (*Model, error) {
	env := &modelEnvelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil, errors.Wrap(core.ErrMalformedModel, fmt.Sprintf("解析模型出错：%v", err))
	}

	classifier := GetAlgorithm(env.Algorithm)
	if classifier == nil {
		return nil, errors.Wrap(core.ErrMalformedModel, fmt.Sprintf("未知的算法%q", env.Algorithm))
	}
	if err := json.Unmarshal(env.Classifier, classifier); err != nil {
		return nil, errors.Wrap(core.ErrMalformedModel, fmt.Sprintf("解析分类器出错：%v", err))
	}
	if v, ok := classifier.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(core.ErrMalformedModel, err.Error())
		}
	}

	if env.WindowSize < 1 || len(env.Channels) == 0 {
		return nil, errors.Wrap(core.ErrMalformedModel, "窗口大小或通道列表有误")
	}
	if classifier.NumFeatures() != len(env.FeatureColumns) {
		return nil, errors.Wrap(core.ErrMalformedModel,
			fmt.Sprintf("分类器特征数%d与特征列数%d不一致", classifier.NumFeatures(), len(env.FeatureColumns)))
	}

	return &Model{
		Exercise:        env.Exercise,
		Algorithm:       env.Algorithm,
		WindowSize:      env.WindowSize,
		Channels:        env.Channels,
		FeatureColumns:  env.FeatureColumns,
		HeldOutAccuracy: env.HeldOutAccuracy,
		TrainedAt:       env.TrainedAt,
		Classifier:      classifier,
	}, nil
}
