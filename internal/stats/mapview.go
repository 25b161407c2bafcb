package stats

import (
	"math"

	"github.com/seuros/covidboard/internal/countries"
)

// MetricStyle controls how a metric is drawn on the map.
type MetricStyle struct {
	Hex        string  `json:"hex"`
	Multiplier float64 `json:"multiplier"`
}

var metricStyles = map[Metric]MetricStyle{
	MetricCases:     {Hex: "#CC1034", Multiplier: 800},
	MetricRecovered: {Hex: "#7dd71d", Multiplier: 1200},
	MetricDeaths:    {Hex: "#fb4443", Multiplier: 2000},
}

// StyleFor returns the map style of a metric, defaulting to cases.
func StyleFor(m Metric) MetricStyle {
	if s, ok := metricStyles[m]; ok {
		return s
	}
	return metricStyles[MetricCases]
}

// MapMarker is a circle drawn over a country.
type MapMarker struct {
	Country   string   `json:"country"`
	ISOCode   string   `json:"iso_code"`
	Flag      string   `json:"flag"`
	Center    Location `json:"center"`
	Radius    float64  `json:"radius"` // meters
	Color     string   `json:"color"`
	Cases     string   `json:"cases"`
	Recovered string   `json:"recovered"`
	Deaths    string   `json:"deaths"`
}

// MarkerRadius scales a marker by the square root of the value so area
// tracks magnitude. Negative or absent values collapse to zero.
func MarkerRadius(c Count, m Metric) float64 {
	if !c.Valid || c.N <= 0 {
		return 0
	}
	return math.Sqrt(float64(c.N)) * StyleFor(m).Multiplier
}

// MapMarkers returns one marker per record, in input order.
func MapMarkers(records []CountryRecord, metric Metric) []MapMarker {
	style := StyleFor(metric)
	markers := make([]MapMarker, 0, len(records))
	for _, r := range records {
		markers = append(markers, MapMarker{
			Country:   r.CountryName,
			ISOCode:   r.ISOCode(),
			Flag:      r.FlagURL(),
			Center:    r.Location(),
			Radius:    MarkerRadius(r.Total(metric), metric),
			Color:     style.Hex,
			Cases:     PrettyPrintTotal(r.Cases),
			Recovered: PrettyPrintTotal(r.Recovered),
			Deaths:    PrettyPrintTotal(r.Deaths),
		})
	}
	return markers
}

// ChoroplethPoint shades one country polygon.
type ChoroplethPoint struct {
	Country     string  `json:"country"`      // ISO 3166-1 alpha-2
	CountryName string  `json:"country_name"` // Human-readable name
	Code        string  `json:"code"`         // ISO 3166-1 numeric, matches TopoJSON ids
	Value       int64   `json:"value"`
	Percentage  float64 `json:"percentage"` // share of the summed metric
}

// Choropleth aggregates records into polygon shades for a metric. Records
// without an ISO code cannot be matched to a polygon and are skipped.
func Choropleth(records []CountryRecord, metric Metric) ([]ChoroplethPoint, int64) {
	var total int64
	for _, r := range records {
		if r.ISOCode() == "" {
			continue
		}
		if v := r.Total(metric); v.Valid && v.N > 0 {
			total += v.N
		}
	}

	points := make([]ChoroplethPoint, 0, len(records))
	for _, r := range records {
		code := r.ISOCode()
		if code == "" {
			continue
		}
		value := max(r.Total(metric).N, 0)

		var pct float64
		if total > 0 {
			pct = math.Round(float64(value)/float64(total)*10000) / 100
		}

		name := r.CountryName
		if name == "" {
			name = countries.Name(code)
		}

		points = append(points, ChoroplethPoint{
			Country:     code,
			CountryName: name,
			Code:        countries.TopoJSONCode(code),
			Value:       value,
			Percentage:  pct,
		})
	}
	return points, total
}
