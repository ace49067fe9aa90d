package classify

import (
	"fmt"
	"testing"

	"github.com/packagewjx/process-risk/internal/preprocess"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separableTable() *core.SampleTable {
	features, labels := separableData()
	table := &core.SampleTable{}
	for i, datum := range features {
		table.Rows = append(table.Rows, &core.Sample{
			ProcessName: fmt.Sprintf("p%d", i%3),
			Cpu:         datum[0],
			Memory:      datum[1],
			Status:      labels[i].String(),
		})
	}
	return table
}

func TestScoreRisk(t *testing.T) {
	table := separableTable()
	dataset, err := preprocess.Derive(table)
	require.NoError(t, err)

	err = ScoreRisk(table, dataset, GetClassifier(RandomForest, nil))
	require.NoError(t, err)
	for _, row := range table.Rows {
		assert.Equal(t, core.LabelOf(row.Status), row.Risk)
	}
}

type panicClassifier struct{}

func (panicClassifier) Fit([][]float64, []core.RiskLabel) error {
	panic("index out of range")
}

func (panicClassifier) Predict([][]float64) ([]core.RiskLabel, error) {
	return nil, nil
}

type brokenClassifier struct {
	fitErr  error
	predict []core.RiskLabel
}

func (b brokenClassifier) Fit([][]float64, []core.RiskLabel) error {
	return b.fitErr
}

func (b brokenClassifier) Predict([][]float64) ([]core.RiskLabel, error) {
	return b.predict, nil
}

func TestScoreRisk_ModelError(t *testing.T) {
	table := separableTable()
	dataset, err := preprocess.Derive(table)
	require.NoError(t, err)

	for _, c := range []Classifier{
		panicClassifier{},
		brokenClassifier{fitErr: fmt.Errorf("fit")},
		brokenClassifier{predict: []core.RiskLabel{0}},
		nil,
	} {
		err := ScoreRisk(table, dataset, c)
		require.Error(t, err)
		assert.Equal(t, core.KindModel, core.KindOf(err))
	}

	/*
		数据集与表格不对应
	*/
	err = ScoreRisk(&core.SampleTable{}, dataset, GetClassifier(RandomForest, nil))
	assert.Equal(t, core.KindModel, core.KindOf(err))
}
