package sales

import (
	"fmt"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
)

const DefaultPeriod = 7

// Decomposition is a classical additive decomposition
// observed = trend + seasonal + resid. Trend and Resid are nil at the edges
// where the centered moving average is undefined.
type Decomposition struct {
	Observed []float64
	Trend    []*float64
	Seasonal []float64
	Resid    []*float64
}

// Decompose splits a regularly spaced series. Even periods use a 2xMA trend
// so that it stays centered.
func Decompose(series []float64, period int) (Decomposition, error) {
	if period < 2 {
		return Decomposition{}, apperror.Validation("period must be at least 2")
	}
	n := len(series)
	if n < 2*period {
		return Decomposition{}, apperror.Validation(fmt.Sprintf("need at least %d observations for period %d, got %d", 2*period, period, n))
	}

	trend := movingAverage(series, period)

	sums := make([]float64, period)
	counts := make([]int, period)
	for i, t := range trend {
		if t == nil {
			continue
		}
		sums[i%period] += series[i] - *t
		counts[i%period]++
	}

	phase := make([]float64, period)
	mean := 0.0
	for k := range phase {
		if counts[k] > 0 {
			phase[k] = sums[k] / float64(counts[k])
		}
		mean += phase[k]
	}
	mean /= float64(period)
	for k := range phase {
		phase[k] -= mean
	}

	d := Decomposition{
		Observed: series,
		Trend:    trend,
		Seasonal: make([]float64, n),
		Resid:    make([]*float64, n),
	}
	for i := range series {
		d.Seasonal[i] = phase[i%period]
		if trend[i] != nil {
			r := series[i] - *trend[i] - d.Seasonal[i]
			d.Resid[i] = &r
		}
	}
	return d, nil
}

func movingAverage(x []float64, period int) []*float64 {
	n := len(x)
	half := period / 2
	out := make([]*float64, n)

	for i := half; i < n-half; i++ {
		var s float64
		if period%2 == 1 {
			for j := i - half; j <= i+half; j++ {
				s += x[j]
			}
		} else {
			s = 0.5*x[i-half] + 0.5*x[i+half]
			for j := i - half + 1; j < i+half; j++ {
				s += x[j]
			}
		}
		v := s / float64(period)
		out[i] = &v
	}
	return out
}

// fillDaily spreads daily totals over every day in [from, to), zero-filling
// days without sales.
func fillDaily(rows []domain.DailySales, from, to time.Time) ([]time.Time, []float64) {
	byDay := make(map[string]float64, len(rows))
	for _, r := range rows {
		byDay[r.Date.Format(dateLayout)] += r.TotalSales
	}

	var (
		days   []time.Time
		values []float64
	)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		values = append(values, byDay[d.Format(dateLayout)])
	}
	return days, values
}

// isoWeekStart is the Monday of ISO week 1 of year.
func isoWeekStart(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
}
