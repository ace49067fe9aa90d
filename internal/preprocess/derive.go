package preprocess

import (
	"github.com/packagewjx/process-risk/pkg/core"
)

// Derive 从表格得到 [cpu, memory] 特征和状态标签。标签少于两种时返回InsufficientVarietyError
func Derive(table *core.SampleTable) (*Dataset, error) {
	dataset := &Dataset{
		Features: FeatureMatrix(table),
		Labels:   make([]core.RiskLabel, table.Len()),
	}
	for i, row := range table.Rows {
		dataset.Labels[i] = core.LabelOf(row.Status)
	}

	if n := dataset.NumDistinctLabels(); n < 2 {
		return nil, core.NewInsufficientVarietyError(n)
	}

	return dataset, nil
}

func FeatureMatrix(table *core.SampleTable) [][]float64 {
	features := make([][]float64, table.Len())
	for i, row := range table.Rows {
		datum := make([]float64, NumFeatures)
		datum[FeatureCpu] = row.Cpu
		datum[FeatureMemory] = row.Memory
		features[i] = datum
	}
	return features
}
