package preprocess

// Normalize 每一列除以该列的最大值，返回新的矩阵和各列最大值。最大值为0的列保持不变
func Normalize(features [][]float64) ([][]float64, []float64) {
	if len(features) == 0 {
		return [][]float64{}, []float64{}
	}

	numColumns := len(features[0])
	max := make([]float64, numColumns)
	for _, datum := range features {
		for j := 0; j < numColumns; j++ {
			if datum[j] > max[j] {
				max[j] = datum[j]
			}
		}
	}

	result := make([][]float64, len(features))
	for i, datum := range features {
		normalized := make([]float64, numColumns)
		for j := 0; j < numColumns; j++ {
			if max[j] == 0 {
				normalized[j] = datum[j]
			} else {
				normalized[j] = datum[j] / max[j]
			}
		}
		result[i] = normalized
	}

	return result, max
}

// Denormalize 将标准化后的数据还原为原始量纲
func Denormalize(data [][]float64, max []float64) [][]float64 {
	result := make([][]float64, len(data))
	for i, datum := range data {
		restored := make([]float64, len(datum))
		for j, v := range datum {
			if j < len(max) && max[j] != 0 {
				restored[j] = v * max[j]
			} else {
				restored[j] = v
			}
		}
		result[i] = restored
	}
	return result
}
