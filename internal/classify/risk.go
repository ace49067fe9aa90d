package classify

import (
	"fmt"

	"github.com/packagewjx/process-risk/internal/preprocess"
	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
)

// ScoreRisk 在同一份数据上训练并预测，将结果写入每一行的Risk。任何失败都以ModelError返回
func ScoreRisk(table *core.SampleTable, dataset *preprocess.Dataset, classifier Classifier) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.NewModelError(fmt.Errorf("%v", r))
		}
	}()

	if classifier == nil {
		return core.NewModelError(errors.New("没有可用的分类器"))
	}
	if dataset.Len() != table.Len() {
		return core.NewModelError(fmt.Errorf("数据集有%d行，表格有%d行", dataset.Len(), table.Len()))
	}

	if err := classifier.Fit(dataset.Features, dataset.Labels); err != nil {
		return core.NewModelError(errors.Wrap(err, "训练失败"))
	}
	predicted, err := classifier.Predict(dataset.Features)
	if err != nil {
		return core.NewModelError(errors.Wrap(err, "预测失败"))
	}
	if len(predicted) != table.Len() {
		return core.NewModelError(fmt.Errorf("预测结果有%d行，表格有%d行", len(predicted), table.Len()))
	}

	for i, row := range table.Rows {
		row.Risk = predicted[i]
	}
	return nil
}
