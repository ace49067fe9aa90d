package classify

import (
	"math/rand"
	"sort"

	"github.com/packagewjx/process-risk/pkg/core"
)

type node struct {
	leaf      bool
	label     core.RiskLabel
	feature   int
	threshold float64 // 小于等于阈值走左子树
	left      *node
	right     *node
}

func (n *node) predict(datum []float64) core.RiskLabel {
	cur := n
	for !cur.leaf {
		if datum[cur.feature] <= cur.threshold {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur.label
}

type treeBuilder struct {
	features        [][]float64
	labels          []core.RiskLabel
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	rng             *rand.Rand
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

func (b *treeBuilder) build(indices []int, depth int) *node {
	counts := b.count(indices)
	label := majority(counts)
	if depth >= b.maxDepth || len(indices) < b.minSamplesSplit || isPure(counts) {
		return &node{leaf: true, label: label}
	}

	best, ok := b.bestSplit(indices)
	if !ok {
		return &node{leaf: true, label: label}
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if b.features[idx][best.feature] <= best.threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit 随机抽取maxFeatures个特征寻找最优划分。抽到的特征都无法划分时继续尝试剩余特征
func (b *treeBuilder) bestSplit(indices []int) (split, bool) {
	numFeatures := len(b.features[0])
	order := b.rng.Perm(numFeatures)

	var best split
	found := false
	for tried, feature := range order {
		if tried >= b.maxFeatures && found {
			break
		}
		s, ok := b.splitOn(indices, feature)
		if !ok {
			continue
		}
		if !found || s.impurity < best.impurity {
			best = s
			found = true
		}
	}
	return best, found
}

// splitOn 在单个特征上按基尼不纯度寻找最优阈值
func (b *treeBuilder) splitOn(indices []int, feature int) (split, bool) {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.features[sorted[i]][feature] < b.features[sorted[j]][feature]
	})

	total := len(sorted)
	right := b.count(sorted)
	left := make([]int, len(right))

	var best split
	found := false
	for i := 0; i < total-1; i++ {
		label := b.labels[sorted[i]]
		left[label]++
		right[label]--

		cur := b.features[sorted[i]][feature]
		next := b.features[sorted[i+1]][feature]
		if cur == next {
			continue
		}

		nl := float64(i + 1)
		nr := float64(total - i - 1)
		impurity := (nl*gini(left, nl) + nr*gini(right, nr)) / float64(total)
		if !found || impurity < best.impurity {
			threshold := cur + (next-cur)/2
			if threshold >= next {
				threshold = cur
			}
			best = split{feature: feature, threshold: threshold, impurity: impurity}
			found = true
		}
	}
	return best, found
}

func (b *treeBuilder) count(indices []int) []int {
	counts := make([]int, core.NumRiskLabels)
	for _, idx := range indices {
		counts[b.labels[idx]]++
	}
	return counts
}

func gini(counts []int, total float64) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / total
		g -= p * p
	}
	return g
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
