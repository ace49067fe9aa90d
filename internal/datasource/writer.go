package datasource

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

// TimestampLayout 写出csv时使用的时间格式，与采集脚本一致
const TimestampLayout = "2006-01-02 15:04:05"

var outputColumns = []string{core.ColumnTimestamp, core.ColumnProcessName, core.ColumnPID, core.ColumnCpu,
	core.ColumnMemory, core.ColumnStatus}

// WriteCsv 以采集脚本的表头写出表格，空时间戳写为空单元格
func WriteCsv(out io.Writer, table *core.SampleTable) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(outputColumns); err != nil {
		return errors.Wrap(err, "写入表头错误")
	}
	for i, row := range table.Rows {
		timestamp := ""
		if row.HasTimestamp {
			timestamp = row.Timestamp.Format(TimestampLayout)
		}
		record := []string{
			timestamp,
			row.ProcessName,
			strconv.Itoa(row.PID),
			strconv.FormatFloat(row.Cpu, 'f', -1, 64),
			strconv.FormatFloat(row.Memory, 'f', -1, 64),
			row.Status,
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "写入第%d行错误", i+1)
		}
	}
	writer.Flush()
	return writer.Error()
}
