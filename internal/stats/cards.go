package stats

// Card is one info box: today's change and the running total for a metric.
type Card struct {
	Metric Metric `json:"metric"`
	Title  string `json:"title"`
	Today  string `json:"today"`
	Total  string `json:"total"`
	Active bool   `json:"active"`
	Red    bool   `json:"red"`
}

var cardTitles = map[Metric]string{
	MetricCases:     "Coronavirus Cases",
	MetricRecovered: "Recovered",
	MetricDeaths:    "Deaths",
}

// Cards builds the three info boxes for a snapshot, marking the active metric.
func Cards(info CountryRecord, active Metric) []Card {
	cards := make([]Card, 0, len(Metrics))
	for _, m := range Metrics {
		cards = append(cards, Card{
			Metric: m,
			Title:  cardTitles[m],
			Today:  PrettyPrintStat(info.Today(m)),
			Total:  PrettyPrintTotal(info.Total(m)),
			Active: m == active,
			Red:    m != MetricRecovered,
		})
	}
	return cards
}
