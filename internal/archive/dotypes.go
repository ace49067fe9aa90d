package archive

import (
	"time"

	"gorm.io/gorm"
)

type RunDO struct {
	gorm.Model
	RunId       string `gorm:"uniqueIndex;type:VARCHAR(36)"`
	GeneratedAt time.Time
	NumSamples  int
	NumCritical int
}

type SampleDO struct {
	gorm.Model
	RunId       string `gorm:"index;type:VARCHAR(36)"`
	RowNum      int
	ProcessName string `gorm:"type:VARCHAR(256)"`
	PID         int
	Timestamp   *time.Time // 为空表示源数据没有时间戳
	Cpu         float64
	Memory      float64
	Status      string `gorm:"type:VARCHAR(16)"`
	Risk        int
}
