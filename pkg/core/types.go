package core

import "time"

// 输入表格的列名，需与采集脚本输出的表头完全一致
const (
	ColumnTimestamp   = "Timestamp"
	ColumnProcessName = "ProcessName"
	ColumnPID         = "PID"
	ColumnCpu         = "CPU"
	ColumnMemory      = "Memory"
	ColumnStatus      = "Status"
)

// RequiredColumns 必须存在的列，PID仅作展示用，不要求存在
var RequiredColumns = []string{ColumnProcessName, ColumnCpu, ColumnMemory, ColumnStatus, ColumnTimestamp}

const (
	StatusNormal   = "NORMAL"
	StatusWarning  = "WARNING"
	StatusCritical = "CRITICAL"
)

type RiskLabel int

const (
	RiskNormal   = RiskLabel(0)
	RiskWarning  = RiskLabel(1)
	RiskCritical = RiskLabel(2)
)

const NumRiskLabels = 3

func (r RiskLabel) String() string {
	switch r {
	case RiskWarning:
		return StatusWarning
	case RiskCritical:
		return StatusCritical
	default:
		return StatusNormal
	}
}

// LabelOf 状态到风险等级的固定映射。大小写敏感，无法识别的状态（包括空）视为NORMAL
func LabelOf(status string) RiskLabel {
	switch status {
	case StatusWarning:
		return RiskWarning
	case StatusCritical:
		return RiskCritical
	default:
		return RiskNormal
	}
}

type Sample struct {
	Timestamp    time.Time
	HasTimestamp bool // 为false时表示时间戳为空
	ProcessName  string
	PID          int
	Cpu          float64 // 单核百分比
	Memory       float64 // MB
	Status       string
	Risk         RiskLabel // 由分类器写入
}

// SampleTable 按源文件行顺序保存的采样数据。分类完成后Risk列即为增强后的表
type SampleTable struct {
	Rows []*Sample
}

func (t *SampleTable) Len() int {
	return len(t.Rows)
}

// HasTimeline 是否至少有一行有可用的时间戳
func (t *SampleTable) HasTimeline() bool {
	for _, row := range t.Rows {
		if row.HasTimestamp {
			return true
		}
	}
	return false
}

// Catalog 进程名到优化建议列表的映射，按名称精确匹配
type Catalog map[string][]string

// Suggestions 返回至多limit条建议，保持原顺序
func (c Catalog) Suggestions(processName string, limit int) ([]string, bool) {
	list, ok := c[processName]
	if !ok {
		return nil, false
	}
	if limit >= 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, true
}

const LineBreak = '\n'

const Splitter = ","
