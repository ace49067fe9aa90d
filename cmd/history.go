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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/packagewjx/process-risk/internal/archive"
	"github.com/packagewjx/process-risk/internal/datasource"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	FlagLimit        = "limit"
	FlagRemoveBefore = "removeBefore"
	FlagRun          = "run"
)

var historyLimit int
var removeBefore string
var historyRun string

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "列出归档数据库中最近的运行记录",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString(KeyArchiveDsn) == "" {
			return fmt.Errorf("未配置归档数据库，请指定--%s", FlagArchiveDsn)
		} else if historyLimit < 1 {
			return fmt.Errorf("limit必须大于0")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		logger, closeLog := openLogger(viper.GetString(KeyLogFile))
		defer closeLog()

		c := newConsole(os.Stdout)
		dialector, err := archive.Dialector(viper.GetString(KeyArchiveDriver), viper.GetString(KeyArchiveDsn))
		if err != nil {
			c.Error(err.Error())
			return
		}
		dao, err := archive.NewDao(dialector, logger.Writer())
		if err != nil {
			logger.Println(err)
			c.Error(err.Error())
			return
		}
		if err := runHistory(dao, os.Stdout, time.Now()); err != nil {
			logger.Println(err)
			c.Error(err.Error())
		}
	},
}

func runHistory(dao archive.Dao, out io.Writer, now time.Time) error {
	if removeBefore != "" {
		t, ok := datasource.ParseTimestamp(removeBefore)
		if !ok {
			return fmt.Errorf("无法解析时间%s", removeBefore)
		}
		if err := dao.RemoveRunsBefore(t); err != nil {
			return err
		}
	}

	if historyRun != "" {
		samples, err := dao.QuerySamples(historyRun)
		if err != nil {
			return err
		}
		return datasource.WriteCsv(out, &core.SampleTable{Rows: samples})
	}

	runs, err := dao.QueryRecentRuns(historyLimit)
	if err != nil {
		return errors.Wrap(err, "查询运行记录出错")
	}
	for _, run := range runs {
		_, _ = fmt.Fprintf(out, "%s  %s (%s)  samples=%d  critical=%d\n", run.Id,
			run.GeneratedAt.Format(datasource.TimestampLayout), humanize.RelTime(run.GeneratedAt, now, "ago", "from now"),
			run.NumSamples, run.NumCritical)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, FlagLimit, 10, "最多列出的记录数")
	historyCmd.Flags().StringVar(&removeBefore, FlagRemoveBefore, "",
		"列出前先永久删除此时间之前的运行记录")
	historyCmd.Flags().StringVar(&historyRun, FlagRun, "",
		"以csv格式输出指定运行记录的全部采样")
}
