package classify

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/packagewjx/process-risk/pkg/core"
)

const (
	ForestDefaultTrees           = 100
	ForestDefaultMaxDepth        = 16
	ForestDefaultMinSamplesSplit = 2
	ForestDefaultSeed            = 42
)

type ForestContext struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

func DefaultForestContext() *ForestContext {
	return &ForestContext{
		NumTrees:        ForestDefaultTrees,
		MaxDepth:        ForestDefaultMaxDepth,
		MinSamplesSplit: ForestDefaultMinSamplesSplit,
		Seed:            ForestDefaultSeed,
	}
}

// NewForest 随机森林。同一个seed、同样的输入，训练结果完全一致
func NewForest(ctx *ForestContext) Classifier {
	c := *ctx
	if c.NumTrees <= 0 {
		c.NumTrees = ForestDefaultTrees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = ForestDefaultMaxDepth
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = ForestDefaultMinSamplesSplit
	}
	return &forest{ctx: c}
}

type forest struct {
	ctx         ForestContext
	trees       []*node
	numFeatures int
}

func (f *forest) Fit(features [][]float64, labels []core.RiskLabel) error {
	if err := checkFeatures(features, -1); err != nil {
		return err
	}
	if len(features) != len(labels) {
		return fmt.Errorf("特征有%d行，标签有%d行，数量不一致", len(features), len(labels))
	}
	for i, label := range labels {
		if label < 0 || int(label) >= core.NumRiskLabels {
			return fmt.Errorf("第%d个标签%d超出范围", i, label)
		}
	}

	f.numFeatures = len(features[0])
	// 每次分裂候选特征数为 floor(sqrt(特征数))
	maxFeatures := int(math.Sqrt(float64(f.numFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(f.ctx.Seed))
	b := &treeBuilder{
		features:        features,
		labels:          labels,
		maxDepth:        f.ctx.MaxDepth,
		minSamplesSplit: f.ctx.MinSamplesSplit,
		maxFeatures:     maxFeatures,
		rng:             rng,
	}

	n := len(features)
	f.trees = make([]*node, f.ctx.NumTrees)
	for t := 0; t < f.ctx.NumTrees; t++ {
		// bootstrap采样
		sample := make([]int, n)
		for i := 0; i < n; i++ {
			sample[i] = rng.Intn(n)
		}
		f.trees[t] = b.build(sample, 0)
	}

	return nil
}

func (f *forest) Predict(features [][]float64) ([]core.RiskLabel, error) {
	if len(f.trees) == 0 {
		return nil, fmt.Errorf("分类器尚未训练")
	}
	if err := checkFeatures(features, f.numFeatures); err != nil {
		return nil, err
	}

	result := make([]core.RiskLabel, len(features))
	for i, datum := range features {
		votes := make([]int, core.NumRiskLabels)
		for _, tree := range f.trees {
			votes[tree.predict(datum)]++
		}
		result[i] = majority(votes)
	}
	return result, nil
}

// checkFeatures numFeatures为-1时不检查列数，只要求各行列数一致
func checkFeatures(features [][]float64, numFeatures int) error {
	if len(features) == 0 {
		return fmt.Errorf("没有数据")
	}
	if numFeatures == -1 {
		numFeatures = len(features[0])
	}
	if numFeatures == 0 {
		return fmt.Errorf("特征数量为0")
	}
	for i, datum := range features {
		if len(datum) != numFeatures {
			return fmt.Errorf("第%d行特征数量为%d，应该为%d", i, len(datum), numFeatures)
		}
		for j, v := range datum {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("第%d行第%d个特征不是有效数值", i, j)
			}
		}
	}
	return nil
}

// majority 票数相同时取等级较低的标签
func majority(votes []int) core.RiskLabel {
	best := 0
	for label := 1; label < len(votes); label++ {
		if votes[label] > votes[best] {
			best = label
		}
	}
	return core.RiskLabel(best)
}
