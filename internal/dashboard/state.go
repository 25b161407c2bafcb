package dashboard

import (
	"github.com/seuros/covidboard/internal/stats"
)

// Worldwide is the selection key for the global scope.
const Worldwide = "worldwide"

const (
	WorldZoom   = 3
	CountryZoom = 4
)

// WorldCenter is the map center used for the worldwide view.
var WorldCenter = LatLng{Lat: 34.80746, Lng: -40.4796}

// LatLng is a map viewport center.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CountryOption is one entry of the country selector.
type CountryOption struct {
	Name  string `json:"name"`
	Value string `json:"value"` // ISO code
	Flag  string `json:"flag"`
}

// Notice is a dismissible failure message shown above the dashboard.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// State is everything the presentation layer renders. Slices and maps are
// replaced on update and never mutated in place, so copies of State can
// share them safely.
type State struct {
	SelectedCountry string                `json:"selected_country"`
	CasesType       stats.Metric          `json:"cases_type"`
	CountryInfo     stats.CountryRecord   `json:"country_info"`
	Countries       []CountryOption       `json:"countries"`
	TableData       []stats.CountryRecord `json:"table_data"`
	MapCountries    []stats.CountryRecord `json:"map_countries"`
	MapCenter       LatLng                `json:"map_center"`
	MapZoom         int                   `json:"map_zoom"`
	Timeline        stats.Timeline        `json:"-"`
	Notice          *Notice               `json:"notice,omitempty"`
}

// NewState returns the state shown before any data arrives.
func NewState() State {
	return State{
		SelectedCountry: Worldwide,
		CasesType:       stats.MetricCases,
		Countries:       []CountryOption{},
		TableData:       []stats.CountryRecord{},
		MapCountries:    []stats.CountryRecord{},
		MapCenter:       WorldCenter,
		MapZoom:         WorldZoom,
	}
}

// Cards returns the info boxes for the current snapshot.
func (s State) Cards() []stats.Card {
	return stats.Cards(s.CountryInfo, s.CasesType)
}

// ChartData returns the daily series for the current metric.
func (s State) ChartData() []stats.ChartPoint {
	return stats.BuildChartData(s.Timeline, s.CasesType)
}

// MapMarkers returns marker circles for every country, styled by metric.
func (s State) MapMarkers() []stats.MapMarker {
	return stats.MapMarkers(s.MapCountries, s.CasesType)
}

// selectorOptions derives the country dropdown from the API list, in API order.
func selectorOptions(records []stats.CountryRecord) []CountryOption {
	options := make([]CountryOption, 0, len(records))
	for _, r := range records {
		options = append(options, CountryOption{
			Name:  r.CountryName,
			Value: r.ISOCode(),
			Flag:  r.FlagURL(),
		})
	}
	return options
}
