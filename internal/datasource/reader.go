package datasource

import (
	"io"

	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

func NewSampleTableReader(source SampleSource) SampleTableReader {
	return &sourceTableReader{source: source}
}

type sourceTableReader struct {
	source SampleSource
}

// Read 读取全部数据。任意一行出错则整体失败，不返回部分数据
func (d *sourceTableReader) Read() (*core.SampleTable, error) {
	table := &core.SampleTable{Rows: make([]*core.Sample, 0, 64)}
	var s *core.Sample
	var err error
	for s, err = d.source.Load(); err == nil; s, err = d.source.Load() {
		table.Rows = append(table.Rows, s)
	}

	if err != io.EOF {
		if _, ok := err.(*core.Error); ok {
			return nil, err
		}
		return nil, errors.Wrap(err, "读取采样数据出现问题")
	}

	if !table.HasTimeline() {
		return nil, core.NewEmptyTimelineError()
	}

	return table, nil
}
