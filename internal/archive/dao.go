package archive

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite"
)

var ErrRunNotFound = fmt.Errorf("不存在该次运行记录")

// Run 一次运行的概要
type Run struct {
	Id          string
	GeneratedAt time.Time
	NumSamples  int
	NumCritical int
}

type Dao interface {
	DB() *gorm.DB
	// SaveRun 保存增强后的表格，返回本次运行的记录
	SaveRun(table *core.SampleTable, generatedAt time.Time) (*Run, error)
	QueryRecentRuns(limit int) ([]*Run, error)
	QuerySamples(runId string) ([]*core.Sample, error)
	// 永久删除t之前的运行记录
	RemoveRunsBefore(t time.Time) error
}

type daoImpl struct {
	db     *gorm.DB
	logger *log.Logger
}

var _ Dao = &daoImpl{}

// Dialector 根据驱动名称选择数据库
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMysql, "":
		return mysql.Open(dsn), nil
	case DriverSqlite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动%s，可选值：mysql, sqlite", driver)
	}
}

func NewDao(dialector gorm.Dialector, out io.Writer) (Dao, error) {
	if out == nil {
		out = os.Stdout
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(out, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	// 创建表格等
	err = db.AutoMigrate(&RunDO{}, &SampleDO{})
	if err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &daoImpl{
		db:     db,
		logger: log.New(out, "Dao: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
	}, nil
}

func (d *daoImpl) SaveRun(table *core.SampleTable, generatedAt time.Time) (*Run, error) {
	const MaxOneRun = 500

	run := &Run{
		Id:          uuid.New().String(),
		GeneratedAt: generatedAt,
		NumSamples:  table.Len(),
	}
	doArr := make([]*SampleDO, len(table.Rows))
	for i, row := range table.Rows {
		do := &SampleDO{
			RunId:       run.Id,
			RowNum:      i,
			ProcessName: row.ProcessName,
			PID:         row.PID,
			Cpu:         row.Cpu,
			Memory:      row.Memory,
			Status:      row.Status,
			Risk:        int(row.Risk),
		}
		if row.HasTimestamp {
			ts := row.Timestamp
			do.Timestamp = &ts
		}
		if row.Risk == core.RiskCritical {
			run.NumCritical++
		}
		doArr[i] = do
	}

	d.logger.Printf("正在保存运行记录%s，共%d条数据\n", run.Id, len(doArr))

	err := d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&RunDO{
			RunId:       run.Id,
			GeneratedAt: run.GeneratedAt,
			NumSamples:  run.NumSamples,
			NumCritical: run.NumCritical,
		}).Error
		if err != nil {
			return errors.Wrap(err, "保存RunDO出错")
		}

		for i := 0; i < len(doArr); i += MaxOneRun {
			end := i + MaxOneRun
			if end > len(doArr) {
				end = len(doArr)
			}
			err := tx.Create(doArr[i:end]).Error
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("保存第%d到%d条SampleDO出错", i, end))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (d *daoImpl) QueryRecentRuns(limit int) ([]*Run, error) {
	doArr := []*RunDO{}
	err := d.db.Order("generated_at desc").Order("id desc").Limit(limit).Find(&doArr).Error
	if err != nil {
		return nil, errors.Wrap(err, "查询运行记录出错")
	}

	result := make([]*Run, len(doArr))
	for i, do := range doArr {
		result[i] = &Run{
			Id:          do.RunId,
			GeneratedAt: do.GeneratedAt,
			NumSamples:  do.NumSamples,
			NumCritical: do.NumCritical,
		}
	}
	return result, nil
}

func (d *daoImpl) QuerySamples(runId string) ([]*core.Sample, error) {
	run := &RunDO{}
	err := d.db.First(run, &RunDO{RunId: runId}).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrRunNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询运行记录%s出错", runId))
	}

	doArr := []*SampleDO{}
	err = d.db.Order("row_num asc").Find(&doArr, &SampleDO{RunId: runId}).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询运行记录%s的数据出错", runId))
	}

	result := make([]*core.Sample, len(doArr))
	for i, do := range doArr {
		s := &core.Sample{
			ProcessName: do.ProcessName,
			PID:         do.PID,
			Cpu:         do.Cpu,
			Memory:      do.Memory,
			Status:      do.Status,
			Risk:        core.RiskLabel(do.Risk),
		}
		if do.Timestamp != nil {
			s.Timestamp = *do.Timestamp
			s.HasTimestamp = true
		}
		result[i] = s
	}
	return result, nil
}

func (d *daoImpl) RemoveRunsBefore(t time.Time) error {
	ids := []string{}
	err := d.db.Model(&RunDO{}).Where("generated_at < ?", t).Pluck("run_id", &ids).Error
	if err != nil {
		return errors.Wrap(err, "查询过期运行记录出错")
	}
	if len(ids) == 0 {
		return nil
	}

	d.logger.Printf("正在删除%d条过期运行记录\n", len(ids))
	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Where("run_id IN ?", ids).Delete(&SampleDO{}).Error
		if err != nil {
			return err
		}
		return tx.Unscoped().Where("run_id IN ?", ids).Delete(&RunDO{}).Error
	})
}

func (d *daoImpl) DB() *gorm.DB {
	return d.db
}
