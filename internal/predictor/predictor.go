package predictor

import (
	"fmt"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/internal/features"
	"github.com/packagewjx/form-classifier/internal/preprocess"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Predictor struct {
	store  store.ClassifierStore
	logger *log.Entry
}

func NewPredictor(classifierStore store.ClassifierStore) *Predictor {
	return &Predictor{
		store:  classifierStore,
		logger: log.WithField("component", "predictor"),
	}
}

// Predict 用某个运动已保存的模型逐行判断会话的动作是否标准。
// 会话的通道集合必须与训练时完全相同，通道顺序可以不同。会话本身不会被修改。
func (p *Predictor) Predict(exercise string, session *core.Session) (*core.Prediction, error) {
	if err := session.Validate(); err != nil {
		return nil, errors.Wrap(err, "会话数据有误")
	}
	model, err := p.store.Load(exercise)
	if err != nil {
		return nil, err
	}

	aligned, err := session.Align(model.Channels)
	if err != nil {
		return nil, err
	}
	preprocess.Default().Preprocess(aligned)

	table, err := features.Extract(aligned, model.WindowSize)
	if err != nil {
		return nil, errors.Wrap(err, "提取特征出错")
	}
	if !equalColumns(table.Columns, model.FeatureColumns) {
		return nil, errors.Wrap(core.ErrSchemaMismatch,
			fmt.Sprintf("特征列%v与模型的特征列%v不一致", table.Columns, model.FeatureColumns))
	}
	if table.NumRows() == 0 {
		return core.NewPrediction([]core.Label{}), nil
	}
	// 整列为空的通道插值后仍为NaN，与训练时一样拒绝
	if err := classify.CheckFinite(table.Columns, table.Rows); err != nil {
		return nil, errors.Wrap(core.ErrSchemaMismatch, err.Error())
	}

	verdicts, err := model.Classifier.Predict(table.Rows)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("使用%s的模型预测出错", exercise))
	}
	prediction := core.NewPrediction(verdicts)
	p.logger.WithField("exercise", exercise).Debugf("会话%s共%d行，标准动作比例%.4f", session.Name, len(verdicts), prediction.Accuracy)
	return prediction, nil
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
