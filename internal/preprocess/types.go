package preprocess

import (
	"github.com/packagewjx/process-risk/pkg/core"
)

// 特征矩阵的列
const (
	FeatureCpu = iota
	FeatureMemory
	NumFeatures
)

// Dataset 与表格逐行对应的特征与标签
type Dataset struct {
	Features [][]float64
	Labels   []core.RiskLabel
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

// NumDistinctLabels 标签的不同取值数量
func (d *Dataset) NumDistinctLabels() int {
	seen := make(map[core.RiskLabel]struct{})
	for _, label := range d.Labels {
		seen[label] = struct{}{}
	}
	return len(seen)
}
