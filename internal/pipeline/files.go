package pipeline

import (
	"context"
	"os"

	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/internal/utils"
	"github.com/pkg/errors"
)

// 固定的输入输出文件名
const (
	DefaultSamplesFile = "process_logs.csv"
	DefaultCatalogFile = "optimization_rules.json"
	DefaultReportFile  = "performance_report.txt"
	DefaultChartFile   = "cpu_usage.html"
	DefaultLogFile     = "process_monitor.log"
)

type Files struct {
	Samples string
	Catalog string
	Report  string
	Chart   string
}

func DefaultFiles() Files {
	return Files{
		Samples: DefaultSamplesFile,
		Catalog: DefaultCatalogFile,
		Report:  DefaultReportFile,
		Chart:   DefaultChartFile,
	}
}

// Written 写出的文件及字节数
type Written struct {
	Report uint64
	Chart  uint64
}

// Run 从文件读取输入，成功后才写出报告和图表
func (p *Pipeline) Run(ctx context.Context, files Files) (*Result, *Written, error) {
	samples, err := os.Open(files.Samples)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "打开采样数据文件%s出错", files.Samples)
	}
	defer func() {
		_ = samples.Close()
	}()

	catalog, err := os.Open(files.Catalog)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "打开优化建议文件%s出错", files.Catalog)
	}
	defer func() {
		_ = catalog.Close()
	}()

	result, err := p.Analyze(ctx, samples, catalog, datasource.CatalogFormatOf(files.Catalog))
	if err != nil {
		return nil, nil, err
	}

	written := &Written{}
	p.logger.Printf("正在写出报告%s\n", files.Report)
	if written.Report, err = utils.WriteFileAtomic(files.Report, result.Report); err != nil {
		return nil, nil, errors.Wrap(err, "写出报告出错")
	}
	p.logger.Printf("正在写出图表%s\n", files.Chart)
	if written.Chart, err = utils.WriteFileAtomic(files.Chart, result.Chart); err != nil {
		return nil, nil, errors.Wrap(err, "写出图表出错")
	}

	return result, written, nil
}
