package classify

import (
	"github.com/packagewjx/form-classifier/pkg/core"
)

// Classifier 是在固定特征列上训练与预测的有监督表格分类器
type Classifier interface {
	Fit(x [][]float64, y []core.Label) error
	Predict(x [][]float64) ([]core.Label, error)
	// 拟合时的特征数量，未拟合时为0
	NumFeatures() int
}

type AlgorithmType string

const (
	DecisionTree = AlgorithmType("decisiontree")
)

// GetAlgorithm 返回一个未拟合的分类器，未知类型返回nil
func GetAlgorithm(algorithmType AlgorithmType) Classifier {
	switch algorithmType {
	case DecisionTree:
		return NewDecisionTree(DefaultTreeOptions())
	default:
		return nil
	}
}
