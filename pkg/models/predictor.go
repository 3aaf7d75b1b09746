// Package models decodes serialized model documents into predictors.
//
// A model artifact is a JSON envelope:
//
//	{"kind": "logistic_regression", "spec": { ... }}
//
// stored at {model_name}/v{N}/model.json in the environment's bucket.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/soufianesys/mlsys/pkg/domain"
)

// DocumentFilename is the conventional primary artifact name.
const DocumentFilename = "model.json"

// Predictor assigns one class label per input row.
type Predictor interface {
	// Predict returns one label per row of t, in row order.
	Predict(t domain.Table) ([]string, error)
}

// ProbabilityPredictor is a Predictor that also scores the confidence of
// its predicted class. Not every model kind supports it.
type ProbabilityPredictor interface {
	Predictor

	// PredictProba returns, per row, the probability of the label
	// Predict assigns to that row.
	PredictProba(t domain.Table) ([]float64, error)
}

type envelope struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

// Decode parses a serialized model document.
//
// Documents with an unknown kind, a malformed spec, or a spec violating
// the kind's internal consistency rules are all rejected here, so that
// bad artifacts fail at load time and not midway through a batch.
func Decode(raw []byte) (Predictor, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("model document is not valid JSON: %w", err)
	}

	switch env.Kind {
	case "logistic_regression":
		return decodeLogisticRegression(env.Spec)
	case "majority_class":
		return decodeMajorityClass(env.Spec)
	case "":
		return nil, fmt.Errorf(`model document has no "kind"`)
	default:
		return nil, fmt.Errorf("unsupported model kind: %q", env.Kind)
	}
}

// featureOf reads one numeric cell, accepting the numeric types the
// warehouse layer may hand back.
func featureOf(column string, row int, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("feature %q in row %d: %w", column, row, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf(
			"feature %q in row %d is %T, not numeric", column, row, v,
		)
	}
}
