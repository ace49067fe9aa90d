package pipeline

import (
	"bytes"
	"context"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/internal/report"
	"github.com/packagewjx/process-risk/internal/timeline"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Timestamp,ProcessName,PID,CPU,Memory,Status\n"

const samples = header +
	"2026-10-18 09:00:00,chrome,4120,22.5,812.4,CRITICAL\n" +
	"2026-10-18 09:00:00,explorer,3088,1.2,96.7,NORMAL\n" +
	"2026-10-18 09:00:00,Code,7764,7.8,310.2,WARNING\n" +
	"2026-10-18 09:00:00,java,900,40,900,CRITICAL\n" +
	"2026-10-18 09:00:03,chrome,4120,24.1,815,CRITICAL\n" +
	"2026-10-18 09:00:03,explorer,3088,1.3,96.9,NORMAL\n" +
	"2026-10-18 09:00:03,Code,7764,8.4,311.6,WARNING\n" +
	"2026-10-18 09:00:03,svchost,1020,0.2,18.1,NORMAL\n" +
	"2026-10-18 09:00:06,chrome,4120,25.9,820.3,CRITICAL\n" +
	"2026-10-18 09:00:06,explorer,3088,1.1,97,NORMAL\n" +
	"2026-10-18 09:00:06,Code,7764,9.1,312,WARNING\n" +
	"2026-10-18 09:00:06,svchost,1020,0.4,18.2,NORMAL\n"

const rules = `{"chrome": ["a", "b", "c", "d", "e"], "Code": ["x"]}`

func newPipeline() *Pipeline {
	return New(Config{
		Now: func() time.Time {
			return time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
		},
	}, log.New(ioutil.Discard, "", 0))
}

func analyze(t *testing.T, content string) (*Result, error) {
	return newPipeline().Analyze(context.Background(), strings.NewReader(content), strings.NewReader(rules), datasource.CatalogJSON)
}

func TestPipeline_Analyze(t *testing.T) {
	result, err := analyze(t, samples)
	require.NoError(t, err)

	for _, row := range result.Table.Rows {
		assert.True(t, row.Risk >= core.RiskNormal && row.Risk <= core.RiskCritical)
		assert.Equal(t, core.LabelOf(row.Status), row.Risk, row.ProcessName)
	}
	assert.Equal(t, 4, result.Critical)

	text := string(result.Report)
	assert.Contains(t, text, report.CriticalSection)
	// 5条建议只输出前3条
	assert.Contains(t, text, "chrome: a, b, c\n")
	assert.NotContains(t, text, "d, e")
	// 不在建议表中的进程出现在表格中，但没有建议
	assert.Contains(t, text, "java")
	assert.NotContains(t, text, "java:")
	// Code不是CRITICAL
	assert.NotContains(t, text, "Code:")

	assert.Contains(t, string(result.Chart), "CPU Usage")
}

func TestPipeline_Idempotent(t *testing.T) {
	first, err := analyze(t, samples)
	require.NoError(t, err)
	second, err := analyze(t, samples)
	require.NoError(t, err)
	assert.Equal(t, first.Report, second.Report)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(Config{Now: func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}}, nil)
	a, err := p.Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.NoError(t, err)
	b, err := p.Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.NoError(t, err)
	linesA := strings.Split(string(a.Report), "\n")
	linesB := strings.Split(string(b.Report), "\n")
	require.Equal(t, len(linesA), len(linesB))
	for i := range linesA {
		if strings.HasPrefix(linesA[i], "Generated: ") {
			continue
		}
		assert.Equal(t, linesA[i], linesB[i])
	}
}

func TestPipeline_NoCritical(t *testing.T) {
	content := header +
		"2026-10-18 09:00:00,explorer,1,1,10,NORMAL\n" +
		"2026-10-18 09:00:00,Code,2,8,300,WARNING\n" +
		"2026-10-18 09:00:03,explorer,1,1.5,11,NORMAL\n" +
		"2026-10-18 09:00:03,Code,2,9,310,WARNING\n"
	result, err := analyze(t, content)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Critical)
	assert.Equal(t, "=== Performance Report ===\nGenerated: 2026-10-18 10:00:00\n\nNo critical processes found\n", string(result.Report))
}

func TestPipeline_Errors(t *testing.T) {
	cases := map[core.ErrorKind]string{
		core.KindInsufficientVariety: header +
			"2026-10-18 09:00:00,a,1,1,1,NORMAL\n" +
			"2026-10-18 09:00:03,b,2,90,900,NORMAL\n",
		core.KindSchema: "Timestamp,ProcessName,PID,CPU,Status\n" +
			"2026-10-18 09:00:00,a,1,1,NORMAL\n",
		core.KindFormat: header +
			"not-a-date,a,1,1,1,NORMAL\n" +
			"2026-10-18 09:00:03,b,2,90,900,CRITICAL\n",
		core.KindEmptyTimeline: header +
			",a,1,1,1,NORMAL\n" +
			",b,2,90,900,CRITICAL\n",
	}
	for kind, content := range cases {
		result, err := analyze(t, content)
		require.Error(t, err, string(kind))
		assert.Nil(t, result)
		assert.Equal(t, kind, core.KindOf(err))
	}

	_, err := newPipeline().Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(`{"a": 1}`), datasource.CatalogJSON)
	assert.Equal(t, core.KindCatalogFormat, core.KindOf(err))
}

func TestPipeline_MalformedInputWritesNoReport(t *testing.T) {
	// 拼写错误的数值不能当作0参与分类
	result, err := analyze(t, header+
		"2026-10-18 09:00:00,chrome,4120,abc,800,CRITICAL\n"+
		"2026-10-18 09:00:03,svchost,1020,0.2,18.1,NORMAL\n")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, core.KindFormat, core.KindOf(err))
	assert.Contains(t, err.Error(), core.ColumnCpu)

	// 缺失值标记仍按0处理
	result, err = analyze(t, header+
		"2026-10-18 09:00:00,chrome,4120,N/A,800,CRITICAL\n"+
		"2026-10-18 09:00:03,svchost,1020,0.2,18.1,NORMAL\n")
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Table.Rows[0].Cpu)

	for _, catalog := range []string{`{"chrome": null}`, `{"chrome": ["a", null]}`} {
		result, err = newPipeline().Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(catalog), datasource.CatalogJSON)
		require.Error(t, err, catalog)
		assert.Nil(t, result)
		assert.Equal(t, core.KindCatalogFormat, core.KindOf(err), catalog)
	}

	_, err = newPipeline().Analyze(context.Background(), strings.NewReader(samples), strings.NewReader("chrome: [1, 2]\n"), datasource.CatalogYAML)
	assert.Equal(t, core.KindCatalogFormat, core.KindOf(err))
}

func TestPipeline_MemoryChart(t *testing.T) {
	p := New(Config{Metrics: []timeline.Metric{timeline.MetricCpu, timeline.MetricMemory}}, nil)
	result, err := p.Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.NoError(t, err)
	assert.Contains(t, string(result.Chart), "Memory Usage")
}

func tempFiles(t *testing.T, content string) (Files, func()) {
	dir, err := ioutil.TempDir("", "procrisk")
	require.NoError(t, err)
	files := Files{
		Samples: filepath.Join(dir, DefaultSamplesFile),
		Catalog: filepath.Join(dir, DefaultCatalogFile),
		Report:  filepath.Join(dir, DefaultReportFile),
		Chart:   filepath.Join(dir, DefaultChartFile),
	}
	require.NoError(t, ioutil.WriteFile(files.Samples, []byte(content), 0644))
	require.NoError(t, ioutil.WriteFile(files.Catalog, []byte(rules), 0644))
	return files, func() {
		_ = os.RemoveAll(dir)
	}
}

func exists(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}

func TestPipeline_Run(t *testing.T) {
	files, cleanup := tempFiles(t, samples)
	defer cleanup()

	logs := &bytes.Buffer{}
	p := New(Config{}, log.New(logs, "", 0))
	result, written, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(result.Report)), written.Report)
	assert.Equal(t, uint64(len(result.Chart)), written.Chart)

	content, err := ioutil.ReadFile(files.Report)
	require.NoError(t, err)
	assert.Equal(t, result.Report, content)
	assert.True(t, exists(files.Chart))
	assert.NotEqual(t, 0, logs.Len())
}

func TestPipeline_RunFailureWritesNothing(t *testing.T) {
	for _, content := range []string{
		header + "2026-10-18 09:00:00,a,1,1,1,NORMAL\n2026-10-18 09:00:03,b,2,9,9,NORMAL\n",
		header + ",a,1,1,1,NORMAL\n,b,2,9,9,CRITICAL\n",
	} {
		files, cleanup := tempFiles(t, content)
		_, _, err := newPipeline().Run(context.Background(), files)
		assert.Error(t, err)
		assert.False(t, exists(files.Report))
		assert.False(t, exists(files.Chart))
		cleanup()
	}

	_, _, err := newPipeline().Run(context.Background(), Files{Samples: "missing.csv"})
	assert.Error(t, err)
	assert.Equal(t, core.KindUnexpected, core.KindOf(err))
}

func TestConfig_String(t *testing.T) {
	assert.Contains(t, Config{Metrics: []timeline.Metric{timeline.MetricCpu}}.String(), "cpu")
}

func TestPipeline_OnStep(t *testing.T) {
	steps := []Step{}
	p := New(Config{OnStep: func(step Step) {
		steps = append(steps, step)
	}}, nil)
	_, err := p.Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.NoError(t, err)
	assert.Equal(t, []Step{StepLoading, StepAnalyzing, StepGenerating}, steps)

	// 校验失败时不会进入后续阶段
	steps = steps[:0]
	_, err = p.Analyze(context.Background(), strings.NewReader("Timestamp\n"), strings.NewReader(rules), datasource.CatalogJSON)
	require.Error(t, err)
	assert.Equal(t, []Step{StepLoading}, steps)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps := []Step{}
	p := New(Config{OnStep: func(step Step) {
		steps = append(steps, step)
	}}, nil)
	result, err := p.Analyze(ctx, strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, core.KindUnexpected, core.KindOf(err))
	// 取消后不再进入分类阶段
	assert.Equal(t, []Step{StepLoading}, steps)

	table, err := newPipeline().Analyze(context.Background(), strings.NewReader(samples), strings.NewReader(rules), datasource.CatalogJSON)
	require.NoError(t, err)
	_, err = p.Process(ctx, table.Table, core.Catalog{})
	assert.True(t, errors.Is(err, context.Canceled))
}
