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
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/packagewjx/process-risk/internal/archive"
	"github.com/packagewjx/process-risk/internal/classify"
	"github.com/packagewjx/process-risk/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// 配置项
const (
	KeySamplesFile   = "input.samples"
	KeyCatalogFile   = "input.catalog"
	KeyReportFile    = "output.report"
	KeyChartFile     = "output.chart"
	KeyLogFile       = "log.file"
	KeyChartMemory   = "chart.memory"
	KeyTrees         = "classifier.trees"
	KeyDepth         = "classifier.depth"
	KeySeed          = "classifier.seed"
	KeyArchiveDriver = "archive.driver"
	KeyArchiveDsn    = "archive.dsn"
)

// Global Flags
const (
	FlagConfig        = "config"
	FlagSamples       = "samples"
	FlagCatalog       = "catalog"
	FlagReport        = "report"
	FlagChart         = "chart"
	FlagLogFile       = "log-file"
	FlagChartMemory   = "memory"
	FlagTrees         = "trees"
	FlagDepth         = "depth"
	FlagSeed          = "seed"
	FlagArchiveDriver = "archive-driver"
	FlagArchiveDsn    = "archive-dsn"
)

const EnvPrefix = "PROCRISK"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procrisk",
	Short: "分析进程资源占用，输出高风险进程报告与CPU使用图表",
	Long: "读取process_logs.csv中的进程采样数据，使用随机森林对每条记录评估风险等级，\n" +
		"将CRITICAL进程及其优化建议（optimization_rules.json）写入performance_report.txt，\n" +
		"并将各进程的CPU使用情况绘制到cpu_usage.html。不带任何参数运行时使用上述固定文件名。\n" +
		"分析失败时只输出错误信息，不会写出任何文件。\n" +
		"输入输出文件名可以通过参数、$HOME/.procrisk.yaml或PROCRISK_前缀的环境变量（如PROCRISK_INPUT_SAMPLES）覆盖，\n" +
		"均未设置时使用上述固定文件名。",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		options := analyzeOptionsFromConfig()
		logger, closeLog := openLogger(options.logFile)
		defer closeLog()

		runAnalyze(context.Background(), options, newConsole(os.Stdout), logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, FlagConfig, "",
		"配置文件路径，默认为$HOME/.procrisk.yaml")
	rootCmd.PersistentFlags().String(FlagSamples, pipeline.DefaultSamplesFile,
		"进程采样数据csv文件")
	rootCmd.PersistentFlags().String(FlagLogFile, pipeline.DefaultLogFile,
		"日志文件")
	rootCmd.PersistentFlags().String(FlagArchiveDriver, archive.DriverMysql,
		"归档数据库驱动，可选值：mysql, sqlite")
	rootCmd.PersistentFlags().String(FlagArchiveDsn, "",
		"归档数据库连接串。若为空，则不归档")

	rootCmd.Flags().String(FlagCatalog, pipeline.DefaultCatalogFile,
		"优化建议文件，支持json与yaml")
	rootCmd.Flags().String(FlagReport, pipeline.DefaultReportFile,
		"输出的报告文件")
	rootCmd.Flags().String(FlagChart, pipeline.DefaultChartFile,
		"输出的图表文件")
	rootCmd.Flags().Bool(FlagChartMemory, false,
		"若设置，则在图表中同时绘制内存使用")
	rootCmd.Flags().Int(FlagTrees, classify.ForestDefaultTrees,
		"随机森林中树的数量")
	rootCmd.Flags().Int(FlagDepth, classify.ForestDefaultMaxDepth,
		"每棵树的最大深度")
	rootCmd.Flags().Int64(FlagSeed, classify.ForestDefaultSeed,
		"随机种子，相同的种子与输入得到相同的结果")

	bind := map[string]string{
		KeySamplesFile:   FlagSamples,
		KeyLogFile:       FlagLogFile,
		KeyArchiveDriver: FlagArchiveDriver,
		KeyArchiveDsn:    FlagArchiveDsn,
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
	bind = map[string]string{
		KeyCatalogFile: FlagCatalog,
		KeyReportFile:  FlagReport,
		KeyChartFile:   FlagChart,
		KeyChartMemory: FlagChartMemory,
		KeyTrees:       FlagTrees,
		KeyDepth:       FlagDepth,
		KeySeed:        FlagSeed,
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".procrisk" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".procrisk")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
