package utils

import (
	"bufio"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFileAtomic 先写入同目录下的临时文件再重命名，避免留下写了一半的文件。返回写入的字节数
func WriteFileAtomic(fileName string, content []byte) (uint64, error) {
	tmp, err := ioutil.TempFile(filepath.Dir(fileName), "."+filepath.Base(fileName)+".*")
	if err != nil {
		return 0, errors.Wrap(err, "创建临时文件失败")
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	counter := &WriterCounter{Writer: tmp}
	writer := bufio.NewWriter(counter)
	if _, err := writer.Write(content); err != nil {
		cleanup()
		return 0, errors.Wrap(err, "写入临时文件失败")
	}
	if err := writer.Flush(); err != nil {
		cleanup()
		return 0, errors.Wrap(err, "写入临时文件失败")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, errors.Wrap(err, "关闭临时文件失败")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return 0, errors.Wrap(err, "设置文件权限失败")
	}
	if err := os.Rename(tmpName, fileName); err != nil {
		_ = os.Remove(tmpName)
		return 0, errors.Wrapf(err, "重命名为%s失败", fileName)
	}

	return counter.Count, nil
}
