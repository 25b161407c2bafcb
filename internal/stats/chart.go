package stats

import (
	"slices"
	"time"
)

// historyDateLayout is the M/D/YY key format of the historical endpoint.
const historyDateLayout = "1/2/06"

// Timeline is the cumulative history returned by /historical/all.
type Timeline struct {
	Cases     map[string]int64 `json:"cases"`
	Deaths    map[string]int64 `json:"deaths"`
	Recovered map[string]int64 `json:"recovered"`
}

// Series returns the cumulative series for a metric.
func (t Timeline) Series(m Metric) map[string]int64 {
	switch m {
	case MetricRecovered:
		return t.Recovered
	case MetricDeaths:
		return t.Deaths
	default:
		return t.Cases
	}
}

// Empty reports whether no metric has any data points.
func (t Timeline) Empty() bool {
	return len(t.Cases) == 0 && len(t.Deaths) == 0 && len(t.Recovered) == 0
}

// ChartPoint is one day of new values.
type ChartPoint struct {
	X string `json:"x"` // YYYY-MM-DD
	Y int64  `json:"y"`
}

// BuildChartData converts a cumulative series into day-over-day new values.
// The earliest day has no predecessor and yields no point.
func BuildChartData(t Timeline, metric Metric) []ChartPoint {
	type day struct {
		at    time.Time
		value int64
	}

	series := t.Series(metric)
	days := make([]day, 0, len(series))
	for key, value := range series {
		at, err := time.Parse(historyDateLayout, key)
		if err != nil {
			continue
		}
		days = append(days, day{at: at, value: value})
	}
	slices.SortFunc(days, func(a, b day) int {
		return a.at.Compare(b.at)
	})

	points := make([]ChartPoint, 0, max(len(days)-1, 0))
	for i := 1; i < len(days); i++ {
		points = append(points, ChartPoint{
			X: days[i].at.Format(time.DateOnly),
			Y: days[i].value - days[i-1].value,
		})
	}
	return points
}
