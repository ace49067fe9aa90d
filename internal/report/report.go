package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

const (
	Title                  = "=== Performance Report ==="
	GeneratedLayout        = "2006-01-02 15:04:05"
	CriticalSection        = "Critical Processes:"
	RecommendationsSection = "Recommendations:"
	NoCriticalSentinel     = "No critical processes found"
)

// MaxSuggestions 每个进程最多输出的建议数
const MaxSuggestions = 3

const columnGap = "  "

type Assembler struct {
	now   func() time.Time
	limit int
}

// NewAssembler now为nil时使用time.Now，生成时间取渲染时的时间
func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now, limit: MaxSuggestions}
}

func (a *Assembler) Render(table *core.SampleTable, catalog core.Catalog) string {
	builder := &strings.Builder{}
	builder.WriteString(Title + "\n")
	builder.WriteString("Generated: " + a.now().Format(GeneratedLayout) + "\n\n")

	critical := CriticalRows(table)
	if len(critical) == 0 {
		builder.WriteString(NoCriticalSentinel + "\n")
		return builder.String()
	}

	builder.WriteString(CriticalSection + "\n")
	builder.WriteString(renderTable(critical))
	builder.WriteString("\n\n" + RecommendationsSection + "\n")
	for _, name := range DistinctNames(critical) {
		suggestions, ok := catalog.Suggestions(name, a.limit)
		if !ok {
			continue
		}
		builder.WriteString(name + ": " + strings.Join(suggestions, ", ") + "\n")
	}

	return builder.String()
}

func (a *Assembler) Write(out io.Writer, table *core.SampleTable, catalog core.Catalog) error {
	_, err := io.WriteString(out, a.Render(table, catalog))
	if err != nil {
		return errors.Wrap(err, "写入报告出错")
	}
	return nil
}

// CriticalRows 预测为CRITICAL的行，保持原顺序
func CriticalRows(table *core.SampleTable) []*core.Sample {
	result := make([]*core.Sample, 0)
	for _, row := range table.Rows {
		if row.Risk == core.RiskCritical {
			result = append(result, row)
		}
	}
	return result
}

// DistinctNames 去重后的进程名，按首次出现的顺序
func DistinctNames(rows []*core.Sample) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.ProcessName]; ok {
			continue
		}
		seen[row.ProcessName] = struct{}{}
		result = append(result, row.ProcessName)
	}
	return result
}

func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// renderTable 右对齐的定宽表格，末尾没有换行
func renderTable(rows []*core.Sample) string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{core.ColumnProcessName, core.ColumnCpu, core.ColumnMemory})
	for _, row := range rows {
		records = append(records, []string{row.ProcessName, FormatNumber(row.Cpu), FormatNumber(row.Memory)})
	}

	width := make([]int, len(records[0]))
	for _, record := range records {
		for i, cell := range record {
			if w := runewidth.StringWidth(cell); w > width[i] {
				width[i] = w
			}
		}
	}

	lines := make([]string, len(records))
	for ri, record := range records {
		cells := make([]string, len(record))
		for i, cell := range record {
			cells[i] = runewidth.FillLeft(cell, width[i])
		}
		lines[ri] = strings.Join(cells, columnGap)
	}
	return strings.Join(lines, "\n")
}
