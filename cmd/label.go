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
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/internal/preprocess"
	"github.com/packagewjx/process-risk/internal/utils"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// labelCmd represents the label command
var labelCmd = &cobra.Command{
	Use:   "label outputFile",
	Short: "按采集脚本的阈值给Status为空的采样补充标签，输出到新的csv文件",
	Long: fmt.Sprintf("CPU大于%d或内存大于%d为CRITICAL，CPU大于%d为WARNING，否则为NORMAL。已有的Status保持不变",
		preprocess.CriticalCpuThreshold, preprocess.CriticalMemoryThreshold, preprocess.WarningCpuThreshold),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("参数错误")
		} else if args[0] == viper.GetString(KeySamplesFile) {
			return fmt.Errorf("outputFile不能与采样数据文件一致")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		logger, closeLog := openLogger(viper.GetString(KeyLogFile))
		defer closeLog()

		c := newConsole(os.Stdout)
		cnt, err := runLabel(viper.GetString(KeySamplesFile), args[0], logger)
		if err != nil {
			logger.Printf("%s: %v\n", core.KindOf(err), err)
			c.Error(err.Error())
			return
		}
		c.Success(fmt.Sprintf("Labeled %d samples.", cnt))
	},
}

func runLabel(samplesFile, outputFile string, logger *log.Logger) (int, error) {
	table, err := loadSamples(samplesFile, logger)
	if err != nil {
		return 0, err
	}
	cnt := preprocess.Relabel(table)
	logger.Printf("补充了%d条记录的标签\n", cnt)

	buf := &bytes.Buffer{}
	if err := datasource.WriteCsv(buf, table); err != nil {
		return 0, err
	}
	if _, err := utils.WriteFileAtomic(outputFile, buf.Bytes()); err != nil {
		return 0, errors.Wrapf(err, "写出文件%s出错", outputFile)
	}
	return cnt, nil
}

func init() {
	rootCmd.AddCommand(labelCmd)
}
