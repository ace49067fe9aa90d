/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/packagewjx/process-risk/internal/archive"
	"github.com/packagewjx/process-risk/internal/classify"
	"github.com/packagewjx/process-risk/internal/pipeline"
	"github.com/packagewjx/process-risk/internal/timeline"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/spf13/viper"
)

type analyzeOptions struct {
	files         pipeline.Files
	logFile       string
	chartMemory   bool
	forest        *classify.ForestContext
	archiveDriver string
	archiveDsn    string
	now           func() time.Time
}

func analyzeOptionsFromConfig() *analyzeOptions {
	forest := classify.DefaultForestContext()
	forest.NumTrees = viper.GetInt(KeyTrees)
	forest.MaxDepth = viper.GetInt(KeyDepth)
	forest.Seed = viper.GetInt64(KeySeed)

	return &analyzeOptions{
		files: pipeline.Files{
			Samples: viper.GetString(KeySamplesFile),
			Catalog: viper.GetString(KeyCatalogFile),
			Report:  viper.GetString(KeyReportFile),
			Chart:   viper.GetString(KeyChartFile),
		},
		logFile:       viper.GetString(KeyLogFile),
		chartMemory:   viper.GetBool(KeyChartMemory),
		forest:        forest,
		archiveDriver: viper.GetString(KeyArchiveDriver),
		archiveDsn:    viper.GetString(KeyArchiveDsn),
		now:           time.Now,
	}
}

// openLogger 日志同时写到日志文件与标准错误。日志文件无法打开时只写标准错误
func openLogger(fileName string) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFunc := func() {}
	if fileName != "" {
		f, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("打开日志文件%s出错：%v\n", fileName, err)
		} else {
			w = io.MultiWriter(f, os.Stderr)
			closeFunc = func() {
				_ = f.Close()
			}
		}
	}
	return log.New(w, "procrisk: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix), closeFunc
}

var stepText = map[pipeline.Step]string{
	pipeline.StepLoading:    "Loading data...",
	pipeline.StepAnalyzing:  "Analyzing bottlenecks...",
	pipeline.StepGenerating: "Generating reports...",
}

// runAnalyze 执行一次完整分析。所有错误都在此处理，返回是否成功，从不以非0状态退出
func runAnalyze(ctx context.Context, options *analyzeOptions, c *console, logger *log.Logger) bool {
	generatedAt := options.now()
	metrics := []timeline.Metric{timeline.MetricCpu}
	if options.chartMemory {
		metrics = append(metrics, timeline.MetricMemory)
	}
	config := pipeline.Config{
		Metrics: metrics,
		Forest:  options.forest,
		Now: func() time.Time {
			return generatedAt
		},
		OnStep: func(step pipeline.Step) {
			c.Step(stepText[step])
		},
	}
	logger.Printf("使用配置%s运行分析\n", config)

	result, written, err := pipeline.New(config, logger).Run(ctx, options.files)
	if err != nil {
		kind := core.KindOf(err)
		if kind == core.KindUnexpected {
			logger.Printf("%s: %v\n", kind, err)
			c.Error(string(kind) + ": " + err.Error())
		} else {
			logger.Println(err.Error())
			c.Error(err.Error())
		}
		return false
	}

	c.Success("Success! Reports generated.")
	c.Detail("  %s (%s, %d critical)", options.files.Report, humanize.Bytes(written.Report), result.Critical)
	c.Detail("  %s (%s)", options.files.Chart, humanize.Bytes(written.Chart))

	if options.archiveDsn != "" {
		archiveRun(options, result.Table, generatedAt, c, logger)
	}
	return true
}

// archiveRun 归档失败只记录日志，不影响本次运行的结果
func archiveRun(options *analyzeOptions, table *core.SampleTable, generatedAt time.Time, c *console, logger *log.Logger) {
	dialector, err := archive.Dialector(options.archiveDriver, options.archiveDsn)
	if err != nil {
		logger.Printf("归档失败：%v\n", err)
		return
	}
	dao, err := archive.NewDao(dialector, logger.Writer())
	if err != nil {
		logger.Printf("归档失败：%v\n", err)
		return
	}
	run, err := dao.SaveRun(table, generatedAt)
	if err != nil {
		logger.Printf("归档失败：%v\n", err)
		return
	}
	logger.Printf("已归档运行%s，共%d条记录\n", run.Id, run.NumSamples)
	c.Detail("  archived as %s", run.Id)
}
