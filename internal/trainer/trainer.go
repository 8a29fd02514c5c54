package trainer

import (
	"fmt"
	"sync"
	"time"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/internal/corpus"
	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/features"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// WindowSizeFunc 返回某个运动训练时使用的窗口大小
type WindowSizeFunc func(exercise string) int

type Trainer struct {
	source     datasource.SessionSource
	store      store.ClassifierStore
	windowSize WindowSizeFunc
	algorithm  classify.AlgorithmType
	logger     *log.Entry
}

// NewTrainer windowSize为nil时所有运动都使用features.DefaultWindowSize
func NewTrainer(source datasource.SessionSource, classifierStore store.ClassifierStore, windowSize WindowSizeFunc) *Trainer {
	if windowSize == nil {
		windowSize = func(string) int {
			return features.DefaultWindowSize
		}
	}
	return &Trainer{
		source:     source,
		store:      classifierStore,
		windowSize: windowSize,
		algorithm:  classify.DecisionTree,
		logger:     log.WithField("component", "trainer"),
	}
}

// Train 训练某个运动的分类器并覆盖保存。留出20%的行用于计算准确率，划分使用固定种子，结果可复现。
func (t *Trainer) Train(exercise string) (*classify.Model, *core.TrainingReport, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, nil, errors.Wrap(err, exercise)
	}
	logger := t.logger.WithField("exercise", exercise)
	windowSize := t.windowSize(exercise)

	table, err := corpus.Build(t.source, exercise, windowSize)
	if err != nil {
		return nil, nil, errors.Wrap(err, fmt.Sprintf("构建%s的训练数据出错", exercise))
	}
	if err := classify.CheckFinite(table.Columns, table.Rows); err != nil {
		return nil, nil, err
	}

	trainIdx, testIdx, err := classify.TrainTestSplit(table.NumRows(), classify.DefaultTestFraction, classify.DefaultSplitSeed)
	if err != nil {
		return nil, nil, errors.Wrap(core.ErrDegenerateFit, err.Error())
	}
	trainX, trainY := classify.Subset(table, trainIdx)
	testX, testY := classify.Subset(table, testIdx)

	logger.Infof("训练集%d行，测试集%d行，窗口大小%d", len(trainIdx), len(testIdx), windowSize)
	classifier := classify.GetAlgorithm(t.algorithm)
	if err := classifier.Fit(trainX, trainY); err != nil {
		return nil, nil, errors.Wrap(err, fmt.Sprintf("训练%s的分类器出错", exercise))
	}
	predicted, err := classifier.Predict(testX)
	if err != nil {
		return nil, nil, errors.Wrap(err, "预测测试集出错")
	}
	accuracy := classify.AccuracyScore(testY, predicted)

	model := &classify.Model{
		Exercise:        exercise,
		Algorithm:       t.algorithm,
		WindowSize:      windowSize,
		Channels:        table.Channels,
		FeatureColumns:  table.Columns,
		HeldOutAccuracy: accuracy,
		TrainedAt:       time.Now(),
		Classifier:      classifier,
	}
	if err := t.store.Save(model); err != nil {
		return nil, nil, errors.Wrap(err, fmt.Sprintf("保存%s的模型出错", exercise))
	}
	logger.Infof("测试集准确率%.4f，模型已保存到%s", accuracy, t.store.Location(exercise))

	return model, &core.TrainingReport{
		Exercise:        exercise,
		HeldOutAccuracy: accuracy,
		TrainRows:       len(trainIdx),
		TestRows:        len(testIdx),
		WindowSize:      windowSize,
		Location:        t.store.Location(exercise),
		TrainedAt:       model.TrainedAt,
	}, nil
}

// TrainAll 并发训练所有运动，所有运动都尝试过后返回合并的错误。报告的顺序与exercises一致，失败的位置为nil。
func (t *Trainer) TrainAll(exercises []string) ([]*core.TrainingReport, error) {
	reports := make([]*core.TrainingReport, len(exercises))
	errs := make([]error, len(exercises))

	wg := sync.WaitGroup{}
	wg.Add(len(exercises))
	for i, exercise := range exercises {
		go func(i int, exercise string) {
			defer wg.Done()
			_, report, err := t.Train(exercise)
			if err != nil {
				t.logger.WithField("exercise", exercise).Errorf("训练失败：%v", err)
				errs[i] = err
				return
			}
			reports[i] = report
		}(i, exercise)
	}
	wg.Wait()

	return reports, multierr.Combine(errs...)
}
