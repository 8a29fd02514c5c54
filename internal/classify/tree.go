package classify

import (
	"fmt"
	"sort"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

const numClasses = 2

type TreeOptions struct {
	MaxDepth        int `json:"maxDepth"` // 0表示不限制
	MinSamplesSplit int `json:"minSamplesSplit"`
	MinSamplesLeaf  int `json:"minSamplesLeaf"`
}

func DefaultTreeOptions() TreeOptions {
	return TreeOptions{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// TreeNode 为决策树节点。非叶子节点中特征值小于等于Threshold的样本进入Left。
type TreeNode struct {
	Leaf      bool       `json:"leaf"`
	Class     core.Label `json:"class"`
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Left      int        `json:"left"`
	Right     int        `json:"right"`
}

// DecisionTreeClassifier 是使用基尼不纯度的CART决策树。节点按先序存放在Nodes中，Nodes[0]为根。
type DecisionTreeClassifier struct {
	Options  TreeOptions `json:"options"`
	Features int         `json:"numFeatures"`
	Nodes    []TreeNode  `json:"nodes"`
}

var _ Classifier = &DecisionTreeClassifier{}

func NewDecisionTree(options TreeOptions) *DecisionTreeClassifier {
	if options.MinSamplesSplit < 2 {
		options.MinSamplesSplit = 2
	}
	if options.MinSamplesLeaf < 1 {
		options.MinSamplesLeaf = 1
	}
	return &DecisionTreeClassifier{Options: options}
}

func (d *DecisionTreeClassifier) NumFeatures() int {
	return d.Features
}

func (d *DecisionTreeClassifier) Fit(x [][]float64, y []core.Label) error {
	if len(x) == 0 {
		return errors.Wrap(core.ErrDegenerateFit, "没有训练数据")
	}
	if len(x) != len(y) {
		return errors.Wrap(core.ErrDegenerateFit, fmt.Sprintf("样本数%d与标签数%d不一致", len(x), len(y)))
	}
	numFeatures := len(x[0])
	if numFeatures == 0 {
		return errors.Wrap(core.ErrDegenerateFit, "没有特征列")
	}

	classes := map[core.Label]struct{}{}
	for i := range x {
		if len(x[i]) != numFeatures {
			return errors.Wrap(core.ErrDegenerateFit, fmt.Sprintf("第%d个样本有%d个特征，应为%d个", i, len(x[i]), numFeatures))
		}
		if y[i] != core.ProperForm && y[i] != core.ImproperForm {
			return errors.Wrap(core.ErrDegenerateFit, fmt.Sprintf("第%d个样本标签%d不合法", i, y[i]))
		}
		classes[y[i]] = struct{}{}
	}
	if len(classes) < numClasses {
		return errors.Wrap(core.ErrDegenerateFit, "训练数据只有一个类别")
	}
	if err := CheckFinite(nil, x); err != nil {
		return err
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}

	d.Features = numFeatures
	d.Nodes = make([]TreeNode, 0, 2*len(x))
	b := &treeBuilder{tree: d, x: x, y: y}
	b.build(indices, 0)
	return nil
}

func (d *DecisionTreeClassifier) Predict(x [][]float64) ([]core.Label, error) {
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("决策树尚未训练")
	}
	result := make([]core.Label, len(x))
	for i, row := range x {
		if len(row) != d.Features {
			return nil, errors.Wrap(core.ErrSchemaMismatch,
				fmt.Sprintf("第%d个样本有%d个特征，模型需要%d个", i, len(row), d.Features))
		}
		node := d.Nodes[0]
		for !node.Leaf {
			if row[node.Feature] <= node.Threshold {
				node = d.Nodes[node.Left]
			} else {
				node = d.Nodes[node.Right]
			}
		}
		result[i] = node.Class
	}
	return result, nil
}

// Validate 检查反序列化得到的树结构
func (d *DecisionTreeClassifier) Validate() error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("决策树没有节点")
	}
	for i, node := range d.Nodes {
		if node.Leaf {
			continue
		}
		if node.Feature < 0 || node.Feature >= d.Features {
			return fmt.Errorf("第%d个节点的特征下标%d越界", i, node.Feature)
		}
		// 子节点总在父节点之后，保证遍历可以结束
		if node.Left <= i || node.Left >= len(d.Nodes) || node.Right <= i || node.Right >= len(d.Nodes) {
			return fmt.Errorf("第%d个节点的子节点下标有误", i)
		}
	}
	return nil
}

type treeBuilder struct {
	tree *DecisionTreeClassifier
	x    [][]float64
	y    []core.Label
}

type split struct {
	feature   int
	threshold float64
	left      []int
	right     []int
}

func (b *treeBuilder) build(indices []int, depth int) int {
	var counts [numClasses]int
	for _, i := range indices {
		counts[b.y[i]]++
	}

	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{Leaf: true, Class: majority(counts)})

	opts := b.tree.Options
	if counts[0] == 0 || counts[1] == 0 ||
		len(indices) < opts.MinSamplesSplit ||
		(opts.MaxDepth > 0 && depth >= opts.MaxDepth) {
		return id
	}

	s := b.bestSplit(indices, counts)
	if s == nil {
		return id
	}

	left := b.build(s.left, depth+1)
	right := b.build(s.right, depth+1)
	b.tree.Nodes[id] = TreeNode{
		Leaf:      false,
		Class:     majority(counts),
		Feature:   s.feature,
		Threshold: s.threshold,
		Left:      left,
		Right:     right,
	}
	return id
}

// bestSplit 在所有特征上寻找加权基尼不纯度最小的划分，分数相同时保留先找到的特征
func (b *treeBuilder) bestSplit(indices []int, total [numClasses]int) *split {
	n := len(indices)
	minLeaf := b.tree.Options.MinSamplesLeaf
	sorted := make([]int, n)

	bestScore := 0.0
	bestFeature := -1
	bestPos := -1
	var bestOrder []int

	for f := 0; f < b.tree.Features; f++ {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		var left [numClasses]int
		for p := 0; p < n-1; p++ {
			left[b.y[sorted[p]]]++
			cur := b.x[sorted[p]][f]
			next := b.x[sorted[p+1]][f]
			if cur == next {
				continue
			}
			nl := p + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			right := [numClasses]int{total[0] - left[0], total[1] - left[1]}
			score := float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)
			if bestFeature == -1 || score < bestScore {
				bestScore = score
				bestFeature = f
				bestPos = p
				bestOrder = append(bestOrder[:0], sorted...)
			}
		}
	}

	if bestFeature == -1 {
		return nil
	}

	lo := b.x[bestOrder[bestPos]][bestFeature]
	hi := b.x[bestOrder[bestPos+1]][bestFeature]
	threshold := lo + (hi-lo)/2
	if threshold >= hi {
		threshold = lo
	}

	left := make([]int, bestPos+1)
	copy(left, bestOrder[:bestPos+1])
	right := make([]int, n-bestPos-1)
	copy(right, bestOrder[bestPos+1:])
	return &split{
		feature:   bestFeature,
		threshold: threshold,
		left:      left,
		right:     right,
	}
}

func gini(counts [numClasses]int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func majority(counts [numClasses]int) core.Label {
	if counts[core.ProperForm] > counts[core.ImproperForm] {
		return core.ProperForm
	}
	return core.ImproperForm
}
