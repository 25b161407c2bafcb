package stats

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Count is a statistic that may be missing from an upstream payload.
// The API omits or nulls fields it has no data for, and occasionally sends
// fractional values; both must survive decoding without failing the record.
type Count struct {
	N     int64
	Valid bool
}

// CountOf returns a present count.
func CountOf(n int64) Count {
	return Count{N: n, Valid: true}
}

// UnmarshalJSON accepts integers, floats (truncated) and null. Any other
// token decodes as an absent count.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count{}

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		*c = CountOf(n)
		return nil
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*c = CountOf(int64(f))
		return nil
	}

	return nil
}

// MarshalJSON writes null for absent counts.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, c.N, 10), nil
}

// Location is a latitude/longitude pair as reported by the API.
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// CountryInfo is the nested `countryInfo` object of a snapshot.
type CountryInfo struct {
	ISO2 string  `json:"iso2"`
	ISO3 string  `json:"iso3"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	Flag string  `json:"flag"`
}

// CountryRecord is one snapshot, either global or for a single country.
type CountryRecord struct {
	CountryName    string      `json:"country,omitempty"`
	Info           CountryInfo `json:"countryInfo"`
	Updated        int64       `json:"updated,omitempty"`
	Cases          Count       `json:"cases"`
	TodayCases     Count       `json:"todayCases"`
	Deaths         Count       `json:"deaths"`
	TodayDeaths    Count       `json:"todayDeaths"`
	Recovered      Count       `json:"recovered"`
	TodayRecovered Count       `json:"todayRecovered"`
	Active         Count       `json:"active"`
	Population     Count       `json:"population"`
}

// ISOCode is the 2-letter selection key.
func (r CountryRecord) ISOCode() string {
	return r.Info.ISO2
}

// FlagURL returns the flag image for the record.
func (r CountryRecord) FlagURL() string {
	return r.Info.Flag
}

// Location returns the record's map coordinates.
func (r CountryRecord) Location() Location {
	return Location{Lat: r.Info.Lat, Long: r.Info.Long}
}

// Total returns the cumulative count for a metric.
func (r CountryRecord) Total(m Metric) Count {
	switch m {
	case MetricRecovered:
		return r.Recovered
	case MetricDeaths:
		return r.Deaths
	default:
		return r.Cases
	}
}

// Today returns the change-since-yesterday count for a metric.
func (r CountryRecord) Today(m Metric) Count {
	switch m {
	case MetricRecovered:
		return r.TodayRecovered
	case MetricDeaths:
		return r.TodayDeaths
	default:
		return r.TodayCases
	}
}

// Metric selects which family of fields the view focuses on.
type Metric string

const (
	MetricCases     Metric = "cases"
	MetricRecovered Metric = "recovered"
	MetricDeaths    Metric = "deaths"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{MetricCases, MetricRecovered, MetricDeaths}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricCases, MetricRecovered, MetricDeaths:
		return true
	}
	return false
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return m, nil
}
