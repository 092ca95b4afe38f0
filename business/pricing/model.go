package pricing

import (
	"fmt"
	"os"

	"quixellMarket/pkg/apperror"

	"github.com/goccy/go-json"
)

// LinearModel is the exported demand regressor. Columns missing from Weights
// contribute nothing, which mirrors reindexing a one-hot frame with zero fill.
type LinearModel struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.ServiceUnavailable("price model unavailable", err)
	}

	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperror.ServiceUnavailable("price model unreadable", err)
	}
	if len(m.Weights) == 0 {
		return nil, apperror.ServiceUnavailable("price model invalid", fmt.Errorf("no weights in %s", path))
	}
	return &m, nil
}

func (m *LinearModel) Predict(features map[string]float64) float64 {
	y := m.Intercept
	for col, v := range features {
		y += m.Weights[col] * v
	}
	return y
}
