package datasource

import (
	"encoding/csv"
	"io"
	"io/ioutil"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

// 可接受的时间戳格式。不带时区的按UTC解析
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

const byteOrderMark = "\ufeff"

// 视为缺失值的单元格内容，与pandas读取csv时的默认缺失值一致
var missingTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// NewCsvSource 读取表头并检查必需的列，缺少时返回SchemaError
func NewCsvSource(in io.Reader, logger *log.Logger) (SampleSource, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		header = []string{}
	} else if err != nil {
		return nil, errors.Wrap(err, "读取表头出错")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	missing := make([]string, 0)
	for _, column := range core.RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) != 0 {
		return nil, core.NewSchemaError(missing)
	}

	return &csvSource{
		reader: reader,
		index:  index,
		logger: logger,
		row:    1,
	}, nil
}

type csvSource struct {
	reader *csv.Reader
	index  map[string]int
	logger *log.Logger
	row    int // 已读取的行数，包括表头
}

func (c *csvSource) Load() (*core.Sample, error) {
	record, err := c.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "读取第%d行数据出错", c.row+1)
	}
	c.row++

	sample := &core.Sample{
		ProcessName: c.cell(record, core.ColumnProcessName),
		Status:      strings.TrimSpace(c.cell(record, core.ColumnStatus)),
	}
	if sample.Cpu, err = c.number(record, core.ColumnCpu); err != nil {
		return nil, err
	}
	if sample.Memory, err = c.number(record, core.ColumnMemory); err != nil {
		return nil, err
	}
	// PID仅作展示，无法解析时不中止
	if pid, err := c.number(record, core.ColumnPID); err != nil {
		c.logger.Printf("第%d行PID无法解析，使用0填充\n", c.row)
	} else {
		sample.PID = int(pid)
	}

	raw := strings.TrimSpace(c.cell(record, core.ColumnTimestamp))
	if raw != "" {
		ts, ok := ParseTimestamp(raw)
		if !ok {
			return nil, core.NewFormatError(c.row, core.ColumnTimestamp, raw)
		}
		sample.Timestamp = ts
		sample.HasTimestamp = true
	}

	return sample, nil
}

// cell 返回列的原始值，行数据不足时视为空
func (c *csvSource) cell(record []string, column string) string {
	i, ok := c.index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// number 解析数值列。空值与缺失值标记填充为0，其他无法解析的值返回FormatError
func (c *csvSource) number(record []string, column string) (float64, error) {
	raw := strings.TrimSpace(c.cell(record, column))
	if raw == "" {
		return 0, nil
	}
	if _, ok := missingTokens[raw]; ok {
		c.logger.Printf("第%d行%s列为缺失值[%s]，使用0填充\n", c.row, column, raw)
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, core.NewFormatError(c.row, column, raw)
	}
	return f, nil
}

func ParseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
