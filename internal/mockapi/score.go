package mockapi

import (
	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/csvclassify/internal/model"
)

// Score compares each result's classification with its labelColumn value.
// Results lacking either are skipped. Accuracy is the share of matches;
// F1Macro is the unweighted mean of per-class F1 over every label seen as
// either prediction or truth. It returns errNoGroundTruth when no result
// can be scored.
func Score(results []model.Result, labelColumn string) (model.Metrics, error) {
	type counts struct{ tp, fp, fn float64 }
	perClass := make(map[string]*counts)
	var order []string
	class := func(label string) *counts {
		c, ok := perClass[label]
		if !ok {
			c = &counts{}
			perClass[label] = c
			order = append(order, label)
		}
		return c
	}

	scored, correct := 0, 0
	for _, r := range results {
		if r.Classification == nil {
			continue
		}
		v, ok := r.Fields.Get(labelColumn)
		if !ok {
			continue
		}
		predicted, actual := *r.Classification, v.String()
		scored++

		if predicted == actual {
			correct++
			class(actual).tp++
			continue
		}
		class(predicted).fp++
		class(actual).fn++
	}

	if scored == 0 {
		return model.Metrics{}, errNoGroundTruth
	}

	f1s := make([]float64, 0, len(order))
	for _, label := range order {
		c := perClass[label]
		f1s = append(f1s, f1(c.tp, c.fp, c.fn))
	}

	return model.Metrics{
		Accuracy: float64(correct) / float64(scored),
		F1Macro:  stat.Mean(f1s, nil),
	}, nil
}

func f1(tp, fp, fn float64) float64 {
	if tp == 0 {
		return 0
	}
	precision := tp / (tp + fp)
	recall := tp / (tp + fn)
	return 2 * precision * recall / (precision + recall)
}
