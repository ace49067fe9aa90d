package classify

import (
	"log"

	"github.com/packagewjx/kmeanspp"
	"github.com/packagewjx/process-risk/pkg/core"
)

// 聚类算法接口
type Algorithm interface {
	Run(data [][]float32, numClass int, context interface{}) (centers [][]float32, class []int)
}

// Classifier 有监督的分类器。Fit之后才能Predict
type Classifier interface {
	Fit(features [][]float64, labels []core.RiskLabel) error
	Predict(features [][]float64) ([]core.RiskLabel, error)
}

type AlgorithmType string

const (
	KMeans       = AlgorithmType("kmeans")
	RandomForest = AlgorithmType("randomforest")
)

func GetAlgorithm(algorithmType AlgorithmType) Algorithm {
	switch algorithmType {
	case KMeans:
		return &kMeansRunner{}
	default:
		return nil
	}
}

// GetClassifier context为nil或类型不对时使用默认参数
func GetClassifier(algorithmType AlgorithmType, context interface{}) Classifier {
	switch algorithmType {
	case RandomForest:
		ctx := DefaultForestContext()
		if context != nil {
			c, ok := context.(*ForestContext)
			if !ok {
				log.Printf("输入的context不是ForestContext类型。将使用默认参数")
			} else {
				ctx = c
			}
		}
		return NewForest(ctx)
	default:
		return nil
	}
}

type KMeansContext struct {
	Round int
}

const (
	KMeansDefaultRound = 30
)

type kMeansRunner struct {
}

func (k *kMeansRunner) Run(data [][]float32, numClass int, context interface{}) (centers [][]float32, class []int) {
	round := KMeansDefaultRound

	if context != nil {
		ctx, ok := context.(*KMeansContext)
		if !ok {
			log.Printf("输入的context不是KMeansContext类型。将使用默认参数")
		} else {
			round = ctx.Round
		}
	}

	return kmeanspp.KMeansPP(numClass, round, data)
}
