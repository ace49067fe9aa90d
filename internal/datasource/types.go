package datasource

import "github.com/packagewjx/process-risk/pkg/core"

type SampleTableReader interface {
	Read() (*core.SampleTable, error)
}

type SampleSource interface {
	// 读取一条采样数据。若读取完毕，则error设置为io.EOF。error为其他时表示读取出错，整个读取过程应当终止
	Load() (*core.Sample, error)
}
