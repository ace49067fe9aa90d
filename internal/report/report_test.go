package report

import (
	"strings"
	"testing"
	"time"

	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozen() time.Time {
	return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
}

func augmented() *core.SampleTable {
	return &core.SampleTable{Rows: []*core.Sample{
		{ProcessName: "chrome", Cpu: 22.5, Memory: 812.4, Risk: core.RiskCritical},
		{ProcessName: "explorer", Cpu: 1.2, Memory: 96.7, Risk: core.RiskNormal},
		{ProcessName: "unmapped", Cpu: 30, Memory: 10, Risk: core.RiskCritical},
		{ProcessName: "Code", Cpu: 7.8, Memory: 310.2, Risk: core.RiskWarning},
		{ProcessName: "chrome", Cpu: 24.1, Memory: 815, Risk: core.RiskCritical},
	}}
}

var catalog = core.Catalog{
	"chrome":   {"s1", "s2", "s3", "s4", "s5"},
	"explorer": {"e1"},
}

func TestAssembler_Render(t *testing.T) {
	text := NewAssembler(frozen).Render(augmented(), catalog)
	expected := "=== Performance Report ===\n" +
		"Generated: 2026-10-18 09:30:00\n" +
		"\n" +
		"Critical Processes:\n" +
		"ProcessName   CPU  Memory\n" +
		"     chrome  22.5   812.4\n" +
		"   unmapped    30      10\n" +
		"     chrome  24.1     815\n" +
		"\n" +
		"Recommendations:\n" +
		"chrome: s1, s2, s3\n"
	assert.Equal(t, expected, text)
}

func TestAssembler_NoCritical(t *testing.T) {
	table := augmented()
	for _, row := range table.Rows {
		row.Risk = core.RiskWarning
	}
	text := NewAssembler(frozen).Render(table, catalog)
	assert.Equal(t, "=== Performance Report ===\nGenerated: 2026-10-18 09:30:00\n\nNo critical processes found\n", text)
	assert.NotContains(t, text, CriticalSection)
	assert.NotContains(t, text, RecommendationsSection)
}

func TestAssembler_Idempotent(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	a := NewAssembler(tick)
	first := strings.SplitN(a.Render(augmented(), catalog), "\n", 3)
	second := strings.SplitN(a.Render(augmented(), catalog), "\n", 3)
	// 只有生成时间一行不同
	assert.NotEqual(t, first[1], second[1])
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, first[2], second[2])
}

func TestAssembler_Write(t *testing.T) {
	builder := &strings.Builder{}
	require.NoError(t, NewAssembler(nil).Write(builder, augmented(), catalog))
	assert.True(t, strings.HasPrefix(builder.String(), Title+"\nGenerated: "))
}

func TestDistinctNames(t *testing.T) {
	assert.Equal(t, []string{"chrome", "unmapped"}, DistinctNames(CriticalRows(augmented())))
	assert.Equal(t, 0, len(CriticalRows(&core.SampleTable{})))
}

func TestRenderTable_WideNames(t *testing.T) {
	text := renderTable([]*core.Sample{{ProcessName: "微信", Cpu: 1, Memory: 2}})
	lines := strings.Split(text, "\n")
	assert.Equal(t, "ProcessName  CPU  Memory", lines[0])
	// 中文字符占两列宽度
	assert.Equal(t, "       微信    1       2", lines[1])
}
