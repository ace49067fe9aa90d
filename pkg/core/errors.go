package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindSchema              = ErrorKind("SchemaError")
	KindFormat              = ErrorKind("FormatError")
	KindEmptyTimeline       = ErrorKind("EmptyTimelineError")
	KindCatalogFormat       = ErrorKind("CatalogFormatError")
	KindInsufficientVariety = ErrorKind("InsufficientVarietyError")
	KindModel               = ErrorKind("ModelError")
	KindUnexpected          = ErrorKind("UnexpectedError")
)

// Error 流水线中可预期的错误。任何一个都会中止本次运行，且不会写出任何文件
type Error struct {
	Kind    ErrorKind
	Msg     string
	Columns []string // SchemaError为缺失的列，FormatError为出错的列
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewSchemaError(missing []string) error {
	return &Error{
		Kind:    KindSchema,
		Msg:     fmt.Sprintf("缺少必需的列：%s", strings.Join(missing, ", ")),
		Columns: missing,
	}
}

func NewFormatError(row int, column string, value string) error {
	return &Error{
		Kind:    KindFormat,
		Msg:     fmt.Sprintf("第%d行%s列的值无法解析，值为[%s]", row, column, value),
		Columns: []string{column},
	}
}

func NewEmptyTimelineError() error {
	return &Error{
		Kind: KindEmptyTimeline,
		Msg:  "所有时间戳均为空，没有可绘制的数据",
	}
}

func NewCatalogFormatError(cause error) error {
	return &Error{
		Kind:  KindCatalogFormat,
		Msg:   "优化建议文件格式有误，应为 进程名 -> 建议列表 的映射",
		cause: cause,
	}
}

func NewInsufficientVarietyError(distinct int) error {
	return &Error{
		Kind: KindInsufficientVariety,
		Msg:  fmt.Sprintf("状态标签只有%d种取值，至少需要2种才能训练分类器", distinct),
	}
}

func NewModelError(cause error) error {
	return &Error{
		Kind:  KindModel,
		Msg:   "分类器训练或预测失败",
		cause: cause,
	}
}

// KindOf 返回错误的类别，不属于流水线错误时返回UnexpectedError
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind 判断错误链中是否有指定类别的流水线错误
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
