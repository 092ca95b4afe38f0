package promotion

import (
	"fmt"
	"math"
	"os"

	"quixellMarket/pkg/apperror"

	"github.com/goccy/go-json"
)

// Feature columns of the promotion classifier.
const (
	FeatureCost              = "cost"
	FeatureCategoryEncoded   = "product_category_encoded"
	FeatureDepartmentEncoded = "product_department_encoded"
	FeatureDayOfWeek         = "day_of_week"
	FeatureWeekOfYear        = "week_of_year"
	defaultDecisionThreshold = 0.5
)

// LogisticModel is the exported promotion classifier.
type LogisticModel struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
	Threshold float64            `json:"threshold"`
}

func LoadLogisticModel(path string) (*LogisticModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.ServiceUnavailable("promotion model unavailable", err)
	}

	var m LogisticModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperror.ServiceUnavailable("promotion model unreadable", err)
	}
	if len(m.Weights) == 0 {
		return nil, apperror.ServiceUnavailable("promotion model invalid", fmt.Errorf("no weights in %s", path))
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		m.Threshold = defaultDecisionThreshold
	}
	return &m, nil
}

func (m *LogisticModel) Probability(features map[string]float64) float64 {
	z := m.Intercept
	for col, v := range features {
		z += m.Weights[col] * v
	}
	return 1 / (1 + math.Exp(-z))
}

func (m *LogisticModel) Predict(features map[string]float64) bool {
	return m.Probability(features) >= m.Threshold
}
