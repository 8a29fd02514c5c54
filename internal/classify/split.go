package classify

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/packagewjx/form-classifier/pkg/core"
)

const (
	DefaultTestFraction = 0.2
	DefaultSplitSeed    = 42
)

// TrainTestSplit 用固定种子随机划分n个样本的下标。测试集大小为ceil(n*testFraction)，不做分层。
// 种子相同时结果相同。
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("测试集比例应在0与1之间，现在为%f", testFraction)
	}
	numTest := int(math.Ceil(float64(n) * testFraction))
	numTrain := n - numTest
	if numTest == 0 || numTrain <= 0 {
		return nil, nil, fmt.Errorf("样本数%d过少，无法划分训练集与测试集", n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[numTest:], perm[:numTest], nil
}

// Subset 按下标取出特征表中的行与标签
func Subset(table *core.FeatureTable, indices []int) (x [][]float64, y []core.Label) {
	x = make([][]float64, len(indices))
	if table.Labels != nil {
		y = make([]core.Label, len(indices))
	}
	for i, idx := range indices {
		x[i] = table.Rows[idx]
		if y != nil {
			y[i] = table.Labels[idx]
		}
	}
	return x, y
}

// AccuracyScore 返回预测正确的比例，没有样本时为0
func AccuracyScore(truth, predicted []core.Label) float64 {
	if len(truth) == 0 || len(truth) != len(predicted) {
		return 0
	}
	correct := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}
