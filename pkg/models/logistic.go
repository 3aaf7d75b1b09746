package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/soufianesys/mlsys/pkg/domain"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a binary classifier over named feature columns.
//
// Classes[1] is the positive class: it is predicted when the sigmoid of
// the linear score is at least 0.5.
type LogisticRegression struct {
	Features     []string
	Coefficients []float64
	Intercept    float64
	Classes      [2]string
}

var _ ProbabilityPredictor = &LogisticRegression{}

func decodeLogisticRegression(spec json.RawMessage) (*LogisticRegression, error) {
	raw := struct {
		Features     []string  `json:"features"`
		Coefficients []float64 `json:"coefficients"`
		Intercept    float64   `json:"intercept"`
		Classes      []string  `json:"classes"`
	}{}
	if err := json.Unmarshal(spec, &raw); err != nil {
		return nil, fmt.Errorf("logistic_regression spec: %w", err)
	}

	if len(raw.Features) == 0 {
		return nil, fmt.Errorf("logistic_regression spec: no features")
	}
	if len(raw.Coefficients) != len(raw.Features) {
		return nil, fmt.Errorf(
			"logistic_regression spec: %d coefficients for %d features",
			len(raw.Coefficients), len(raw.Features),
		)
	}
	if len(raw.Classes) != 2 {
		return nil, fmt.Errorf(
			"logistic_regression spec: needs exactly 2 classes, got %d", len(raw.Classes),
		)
	}

	return &LogisticRegression{
		Features:     raw.Features,
		Coefficients: raw.Coefficients,
		Intercept:    raw.Intercept,
		Classes:      [2]string{raw.Classes[0], raw.Classes[1]},
	}, nil
}

func (lr *LogisticRegression) Predict(t domain.Table) ([]string, error) {
	scores, err := lr.positiveProba(t)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(scores))
	for i, p := range scores {
		if p >= 0.5 {
			labels[i] = lr.Classes[1]
		} else {
			labels[i] = lr.Classes[0]
		}
	}
	return labels, nil
}

func (lr *LogisticRegression) PredictProba(t domain.Table) ([]float64, error) {
	scores, err := lr.positiveProba(t)
	if err != nil {
		return nil, err
	}
	probas := make([]float64, len(scores))
	for i, p := range scores {
		// probability of the predicted class, not of the positive class
		probas[i] = math.Max(p, 1-p)
	}
	return probas, nil
}

func (lr *LogisticRegression) positiveProba(t domain.Table) ([]float64, error) {
	indexes := make([]int, len(lr.Features))
	for i, f := range lr.Features {
		idx, ok := t.ColumnIndex(f)
		if !ok {
			return nil, fmt.Errorf("input table has no feature column %q", f)
		}
		indexes[i] = idx
	}

	coef := mat.NewVecDense(len(lr.Coefficients), lr.Coefficients)
	x := mat.NewVecDense(len(lr.Features), nil)

	probas := make([]float64, t.Len())
	for rowNum, row := range t.Rows {
		for i, idx := range indexes {
			v, err := featureOf(lr.Features[i], rowNum, row[idx])
			if err != nil {
				return nil, err
			}
			x.SetVec(i, v)
		}
		score := mat.Dot(coef, x) + lr.Intercept
		probas[rowNum] = 1 / (1 + math.Exp(-score))
	}
	return probas, nil
}
