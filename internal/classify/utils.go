package classify

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

func OutputResult(data [][]float64, output io.Writer, precision int) error {
	writer := csv.NewWriter(output)
	for _, datum := range data {
		record := make([]string, len(datum))
		for i, f := range datum {
			record[i] = strconv.FormatFloat(f, 'f', precision, 64)
		}
		err := writer.Write(record)
		if err != nil {
			return errors.Wrap(err, "写入数据错误")
		}
	}

	writer.Flush()
	return writer.Error()
}

func ToFloat32(data [][]float64) [][]float32 {
	result := make([][]float32, len(data))
	for i, datum := range data {
		arr := make([]float32, len(datum))
		for j, v := range datum {
			arr[j] = float32(v)
		}
		result[i] = arr
	}
	return result
}

func ToFloat64(data [][]float32) [][]float64 {
	result := make([][]float64, len(data))
	for i, datum := range data {
		arr := make([]float64, len(datum))
		for j, v := range datum {
			arr[j] = float64(v)
		}
		result[i] = arr
	}
	return result
}
