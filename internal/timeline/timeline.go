package timeline

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

type Metric string

const (
	MetricCpu    = Metric("cpu")
	MetricMemory = Metric("memory")
)

func (m Metric) title() string {
	switch m {
	case MetricMemory:
		return "Memory Usage"
	default:
		return "CPU Usage"
	}
}

func (m Metric) axisName() string {
	switch m {
	case MetricMemory:
		return "Memory (MB)"
	default:
		return "CPU (%)"
	}
}

func (m Metric) value(s *core.Sample) float64 {
	switch m {
	case MetricMemory:
		return s.Memory
	default:
		return s.Cpu
	}
}

type Point struct {
	Time  time.Time
	Value float64
}

// Series 单个进程在一个指标上的时间序列
type Series struct {
	Name   string
	Points []Point
}

type Exporter struct {
	metrics   []Metric
	pageTitle string
}

// NewExporter 未指定指标时只绘制CPU
func NewExporter(metrics ...Metric) *Exporter {
	if len(metrics) == 0 {
		metrics = []Metric{MetricCpu}
	}
	return &Exporter{metrics: metrics, pageTitle: "Process Resource Usage"}
}

func (e *Exporter) Metrics() []Metric {
	return e.metrics
}

// BuildSeries 按进程名首次出现的顺序拆分序列，每个序列按时间排序。时间戳为空的行没有横坐标，不参与绘制
func BuildSeries(table *core.SampleTable, metric Metric) ([]*Series, error) {
	if !table.HasTimeline() {
		return nil, core.NewEmptyTimelineError()
	}

	index := make(map[string]*Series)
	result := make([]*Series, 0)
	for _, row := range table.Rows {
		if !row.HasTimestamp {
			continue
		}
		s, ok := index[row.ProcessName]
		if !ok {
			s = &Series{Name: row.ProcessName, Points: make([]Point, 0, 16)}
			index[row.ProcessName] = s
			result = append(result, s)
		}
		s.Points = append(s.Points, Point{Time: row.Timestamp, Value: metric.value(row)})
	}

	for _, s := range result {
		points := s.Points
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Time.Before(points[j].Time)
		})
	}
	return result, nil
}

// Render 将所有指标的折线图写入同一个HTML页面
func (e *Exporter) Render(out io.Writer, table *core.SampleTable) error {
	page := components.NewPage()
	page.PageTitle = e.pageTitle

	for _, metric := range e.metrics {
		series, err := BuildSeries(table, metric)
		if err != nil {
			return err
		}
		page.AddCharts(lineChart(metric, series))
	}

	if err := page.Render(out); err != nil {
		return errors.Wrap(err, "渲染图表出错")
	}
	return nil
}

func lineChart(metric Metric, series []*Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: metric.title(),
			Width:     "1200px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: metric.title()}),
		charts.WithXAxisOpts(opts.XAxis{Name: core.ColumnTimestamp, Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: metric.axisName()}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	for _, s := range series {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.LineData{
				Name:  fmt.Sprintf("%s %s", s.Name, p.Time.Format("2006-01-02 15:04:05")),
				Value: []interface{}{p.Time.UnixNano() / int64(time.Millisecond), p.Value},
			}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}
