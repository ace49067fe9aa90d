package cmd

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLabelAndProfile(t *testing.T) {
	dir, err := ioutil.TempDir("", "procrisk")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	input := filepath.Join(dir, "in.csv")
	require.NoError(t, ioutil.WriteFile(input, []byte("Timestamp,ProcessName,PID,CPU,Memory,Status\n"+
		"2026-10-18 10:00:00,chrome,1,20,100,\n"+
		"2026-10-18 10:00:00,Code,2,6,100,\n"+
		"2026-10-18 10:00:00,svchost,3,1,10,\n"+
		"2026-10-18 10:00:00,explorer,4,1,10,WARNING\n"), 0644))
	logger := log.New(ioutil.Discard, "", 0)

	output := filepath.Join(dir, "out.csv")
	cnt, err := runLabel(input, output, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)
	content, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,ProcessName,PID,CPU,Memory,Status\n"+
		"2026-10-18 10:00:00,chrome,1,20,100,CRITICAL\n"+
		"2026-10-18 10:00:00,Code,2,6,100,WARNING\n"+
		"2026-10-18 10:00:00,svchost,3,1,10,NORMAL\n"+
		"2026-10-18 10:00:00,explorer,4,1,10,WARNING\n", string(content))

	centers := filepath.Join(dir, "centers.csv")
	outputPrecision = 1
	kMeansRound = 5
	require.NoError(t, runProfile(input, centers, 2, logger))
	content, err = ioutil.ReadFile(centers)
	require.NoError(t, err)
	assert.Len(t, bytesLines(content), 2)

	assert.Error(t, runProfile(input, centers, 5, logger))

	// 写出失败时返回错误，且不留下文件
	missingDir := filepath.Join(dir, "missing", "centers.csv")
	assert.Error(t, runProfile(input, missingDir, 2, logger))
	_, err = os.Stat(missingDir)
	assert.True(t, os.IsNotExist(err))
	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f.Name(), ".centers.csv.")
	}
}

func bytesLines(content []byte) []string {
	lines := []string{}
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, string(content[start:i]))
			start = i + 1
		}
	}
	return lines
}
