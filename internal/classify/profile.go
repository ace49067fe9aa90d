package classify

import (
	"fmt"
	"math"

	"github.com/packagewjx/process-risk/internal/preprocess"
	"github.com/packagewjx/process-risk/pkg/core"
)

// UsageProfiles 对 [cpu, memory] 标准化后做K-Means聚类，返回原始量纲下的中心和每行所属类别
func UsageProfiles(table *core.SampleTable, numClass int, round int) ([][]float64, []int, error) {
	if numClass < 1 || numClass > table.Len() {
		return nil, nil, fmt.Errorf("类别数量应在1到%d之间，现在为%d", table.Len(), numClass)
	}

	normalized, max := preprocess.Normalize(preprocess.FeatureMatrix(table))
	data := ToFloat32(normalized)
	// 不同的点少于类别数时，多出的类没有成员，中心为NaN
	if distinct := numDistinct(data); numClass > distinct {
		return nil, nil, fmt.Errorf("类别数量应在1到%d之间，现在为%d。数据中只有%d个不同的点", distinct, numClass, distinct)
	}

	alg := GetAlgorithm(KMeans)
	centers, class := alg.Run(data, numClass, &KMeansContext{Round: round})
	for i, center := range centers {
		for _, v := range center {
			if math.IsNaN(float64(v)) {
				return nil, nil, fmt.Errorf("第%d类没有成员，请减少类别数量", i)
			}
		}
	}

	return preprocess.Denormalize(ToFloat64(centers), max), class, nil
}

func numDistinct(data [][]float32) int {
	seen := make(map[[preprocess.NumFeatures]float32]struct{}, len(data))
	for _, datum := range data {
		var key [preprocess.NumFeatures]float32
		copy(key[:], datum)
		seen[key] = struct{}{}
	}
	return len(seen)
}
