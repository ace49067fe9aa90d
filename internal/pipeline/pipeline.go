package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"time"

	"github.com/packagewjx/process-risk/internal/classify"
	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/internal/preprocess"
	"github.com/packagewjx/process-risk/internal/report"
	"github.com/packagewjx/process-risk/internal/timeline"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Step 流水线所处的阶段
type Step int

const (
	StepLoading Step = iota
	StepAnalyzing
	StepGenerating
)

type Config struct {
	Metrics    []timeline.Metric       // 图表中绘制的指标，为空时只绘制CPU
	Forest     *classify.ForestContext // 为nil时使用默认参数
	Now        func() time.Time        // 报告生成时间，为nil时使用time.Now
	Classifier classify.AlgorithmType
	OnStep     func(step Step) // 每进入一个阶段时调用，可为nil
}

func (c Config) String() string {
	view := struct {
		Metrics    []timeline.Metric
		Forest     *classify.ForestContext
		Classifier classify.AlgorithmType
	}{c.Metrics, c.Forest, c.Classifier}
	marshal, err := json.Marshal(view)
	if err != nil {
		return fmt.Sprintf("%+v", view)
	}
	return string(marshal)
}

// Result 一次运行的产物。Report与Chart都在内存中生成，由调用者决定写到哪里
type Result struct {
	Table    *core.SampleTable
	Report   []byte
	Chart    []byte
	Critical int
}

type Pipeline struct {
	config    Config
	logger    *log.Logger
	assembler *report.Assembler
	exporter  *timeline.Exporter
}

func New(config Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	if config.Forest == nil {
		config.Forest = classify.DefaultForestContext()
	}
	if config.Classifier == "" {
		config.Classifier = classify.RandomForest
	}
	return &Pipeline{
		config:    config,
		logger:    logger,
		assembler: report.NewAssembler(config.Now),
		exporter:  timeline.NewExporter(config.Metrics...),
	}
}

// Analyze 校验、训练、预测并生成报告和图表。任何一步失败都直接返回，不产生任何产物
func (p *Pipeline) Analyze(ctx context.Context, samples io.Reader, catalogIn io.Reader, catalogFormat datasource.CatalogFormat) (*Result, error) {
	p.step(StepLoading)
	p.logger.Println("正在读取采样数据")
	source, err := datasource.NewCsvSource(samples, p.logger)
	if err != nil {
		return nil, err
	}
	table, err := datasource.NewSampleTableReader(source).Read()
	if err != nil {
		return nil, err
	}
	p.logger.Printf("读取了%d条采样数据\n", table.Len())
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "读取采样数据后被取消")
	}

	p.logger.Println("正在读取优化建议")
	catalog, err := datasource.LoadCatalog(catalogIn, catalogFormat)
	if err != nil {
		return nil, err
	}
	p.logger.Printf("读取了%d个进程的优化建议\n", len(catalog))

	return p.Process(ctx, table, catalog)
}

// Process 对已校验的数据执行分类并生成产物
func (p *Pipeline) Process(ctx context.Context, table *core.SampleTable, catalog core.Catalog) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "分析开始前被取消")
	}
	p.step(StepAnalyzing)
	p.logger.Println("正在分析瓶颈")
	dataset, err := preprocess.Derive(table)
	if err != nil {
		return nil, err
	}
	classifier := classify.GetClassifier(p.config.Classifier, p.config.Forest)
	if err := classify.ScoreRisk(table, dataset, classifier); err != nil {
		return nil, err
	}

	result := &Result{
		Table:    table,
		Critical: len(report.CriticalRows(table)),
	}
	p.logger.Printf("分类完成，共有%d条CRITICAL记录\n", result.Critical)

	// 两者都只读增强后的表，可以并行
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "分类完成后被取消")
	}
	p.step(StepGenerating)
	p.logger.Println("正在生成报告和图表")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return errors.Wrap(err, "生成报告前被取消")
		}
		buf := &bytes.Buffer{}
		if err := p.assembler.Write(buf, table, catalog); err != nil {
			return err
		}
		result.Report = buf.Bytes()
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return errors.Wrap(err, "生成图表前被取消")
		}
		buf := &bytes.Buffer{}
		if err := p.exporter.Render(buf, table); err != nil {
			return err
		}
		result.Chart = buf.Bytes()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Pipeline) step(step Step) {
	if p.config.OnStep != nil {
		p.config.OnStep(step)
	}
}
