package preprocess

import "github.com/packagewjx/process-risk/pkg/core"

// 采集脚本使用的判定阈值
const (
	CriticalCpuThreshold    = 15
	CriticalMemoryThreshold = 500
	WarningCpuThreshold     = 5
)

// StatusFor 按采集脚本的规则给样本打标签
func StatusFor(cpu, memory float64) string {
	if cpu > CriticalCpuThreshold || memory > CriticalMemoryThreshold {
		return core.StatusCritical
	} else if cpu > WarningCpuThreshold {
		return core.StatusWarning
	}
	return core.StatusNormal
}

// Relabel 给状态为空的样本补充标签，返回补充的数量
func Relabel(table *core.SampleTable) int {
	cnt := 0
	for _, row := range table.Rows {
		if row.Status == "" {
			row.Status = StatusFor(row.Cpu, row.Memory)
			cnt++
		}
	}
	return cnt
}
