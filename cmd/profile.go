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
	"regexp"
	"strconv"

	"github.com/packagewjx/process-risk/internal/classify"
	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/internal/utils"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for profile
const (
	FlagOutputPrecision = "outputPrecision"
	FlagKMeansRound     = "kMeansRound"
)

const DefaultOutputPrecision = 2

var outputPrecision int
var kMeansRound int

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile outputFile numClass",
	Short: "使用K-Means对采样数据的CPU与内存聚类，输出各类的中心到csv文件中",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("参数错误")
		} else if args[0] == viper.GetString(KeySamplesFile) {
			return fmt.Errorf("outputFile不能与采样数据文件一致")
		}

		if match, _ := regexp.MatchString("^\\d+$", args[1]); !match {
			return fmt.Errorf("类数量参数不是数字")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		logger, closeLog := openLogger(viper.GetString(KeyLogFile))
		defer closeLog()

		numClass, _ := strconv.Atoi(args[1])
		if err := runProfile(viper.GetString(KeySamplesFile), args[0], numClass, logger); err != nil {
			logger.Printf("%s: %v\n", core.KindOf(err), err)
			newConsole(os.Stdout).Error(err.Error())
		}
	},
}

func runProfile(samplesFile, outputFile string, numClass int, logger *log.Logger) error {
	logger.Println("读取数据中")
	table, err := loadSamples(samplesFile, logger)
	if err != nil {
		return err
	}
	logger.Println("读取数据完成")

	logger.Println("运行K-Means算法中")
	centers, class, err := classify.UsageProfiles(table, numClass, kMeansRound)
	if err != nil {
		return err
	}
	counts := make([]int, numClass)
	for _, c := range class {
		counts[c]++
	}
	logger.Printf("运行K-Means算法完成，各类样本数量：%v\n", counts)

	buf := &bytes.Buffer{}
	if err := classify.OutputResult(centers, buf, outputPrecision); err != nil {
		return err
	}
	if _, err := utils.WriteFileAtomic(outputFile, buf.Bytes()); err != nil {
		return errors.Wrapf(err, "写出文件%s出错", outputFile)
	}
	return nil
}

func loadSamples(fileName string, logger *log.Logger) (*core.SampleTable, error) {
	in, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "打开采样数据文件%s出错", fileName)
	}
	defer func() {
		_ = in.Close()
	}()
	source, err := datasource.NewCsvSource(in, logger)
	if err != nil {
		return nil, err
	}
	return datasource.NewSampleTableReader(source).Read()
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().IntVarP(&outputPrecision, FlagOutputPrecision, "p", DefaultOutputPrecision,
		"输出文件数据精度，默认为2")
	profileCmd.Flags().IntVar(&kMeansRound, FlagKMeansRound, classify.KMeansDefaultRound,
		"K-Means算法执行的轮次")
}
