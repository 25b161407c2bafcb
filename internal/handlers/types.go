package handlers

import (
	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/stats"
)

// ViewResponse is the dashboard header: selection, snapshot and info cards
type ViewResponse struct {
	SelectedCountry string              `json:"selected_country"`
	CasesType       stats.Metric        `json:"cases_type"`
	CountryInfo     stats.CountryRecord `json:"country_info"`
	Cards           []stats.Card        `json:"cards"`
	MapCenter       dashboard.LatLng    `json:"map_center"`
	MapZoom         int                 `json:"map_zoom"`
	Notice          *dashboard.Notice   `json:"notice,omitempty"`
}

// TableRow is one leaderboard line
type TableRow struct {
	Rank    int    `json:"rank"`
	Country string `json:"country"`
	ISOCode string `json:"iso_code"`
	Flag    string `json:"flag"`
	Value   int64  `json:"value"`
	Display string `json:"display"` // grouped digits
}

// MapResponse wraps marker circles and choropleth shades with the viewport
type MapResponse struct {
	Center     dashboard.LatLng        `json:"center"`
	Zoom       int                     `json:"zoom"`
	CasesType  stats.Metric            `json:"cases_type"`
	Style      stats.MetricStyle       `json:"style"`
	Markers    []stats.MapMarker       `json:"markers"`
	Choropleth []stats.ChoroplethPoint `json:"choropleth"`
	Total      int64                   `json:"total"`
}

// ChartResponse is the daily series for the selected metric
type ChartResponse struct {
	CasesType stats.Metric       `json:"cases_type"`
	Points    []stats.ChartPoint `json:"points"`
}

// CountriesResponse feeds the country selector
type CountriesResponse struct {
	Selected  string                    `json:"selected"`
	Options   []dashboard.CountryOption `json:"options"`
	Suggested string                    `json:"suggested,omitempty"` // visitor's country when it is listed
}

// SelectCountryRequest is the payload for changing the selected country
type SelectCountryRequest struct {
	Country string `json:"country"`
}

// SelectMetricRequest is the payload for changing the highlighted metric
type SelectMetricRequest struct {
	Metric string `json:"metric"`
}
