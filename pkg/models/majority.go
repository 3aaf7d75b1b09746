package models

import (
	"encoding/json"
	"fmt"

	"github.com/soufianesys/mlsys/pkg/domain"
)

// MajorityClass is the trivial baseline model: it predicts one fixed
// class for every row and exposes no probability.
type MajorityClass struct {
	Class string
}

var _ Predictor = &MajorityClass{}

func decodeMajorityClass(spec json.RawMessage) (*MajorityClass, error) {
	raw := struct {
		Class string `json:"class"`
	}{}
	if err := json.Unmarshal(spec, &raw); err != nil {
		return nil, fmt.Errorf("majority_class spec: %w", err)
	}
	if raw.Class == "" {
		return nil, fmt.Errorf("majority_class spec: no class")
	}
	return &MajorityClass{Class: raw.Class}, nil
}

func (mc *MajorityClass) Predict(t domain.Table) ([]string, error) {
	labels := make([]string, t.Len())
	for i := range labels {
		labels[i] = mc.Class
	}
	return labels, nil
}
