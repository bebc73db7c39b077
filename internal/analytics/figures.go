package analytics

// Chart keys of the dashboard payload.
const (
	ChartOutcomes        = "outcomes"
	ChartSentiment       = "sentiment"
	ChartDailyVolume     = "daily_volume"
	ChartRateNegotiation = "rate_negotiation"
	ChartDurationSuccess = "duration_success"
)

const chartHeight = 400

// sentimentColors are applied to the sentiment bars in order.
var sentimentColors = []string{"#28a745", "#ffc107", "#dc3545"}

// Figure is a chart bundle the dashboard passes straight to Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the attributes the dashboard uses are modelled.
type Trace struct {
	Type   string   `json:"type"`
	Name   string   `json:"name"`
	Mode   string   `json:"mode,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Values []int    `json:"values,omitempty"`
	X      any      `json:"x,omitempty"`
	Y      any      `json:"y,omitempty"`
	NBinsX int      `json:"nbinsx,omitempty"`
	Marker *Marker  `json:"marker,omitempty"`
}

type Marker struct {
	Color []string `json:"color"`
}

type Layout struct {
	Title  string `json:"title"`
	XAxis  *Axis  `json:"xaxis,omitempty"`
	YAxis  *Axis  `json:"yaxis,omitempty"`
	Height int    `json:"height"`
}

type Axis struct {
	Title string `json:"title"`
}

// Figures renders the report series as Plotly figures keyed by chart name.
// An empty report yields an empty map; the rate chart is omitted when no rate difference is present.
func Figures(report Report) map[string]Figure {
	figures := make(map[string]Figure)
	s := report.Series
	if s == nil {
		return figures
	}

	labels, values := split(s.Outcomes)
	figures[ChartOutcomes] = Figure{
		Data: []Trace{{
			Type:   "pie",
			Name:   "Call Outcomes",
			Labels: labels,
			Values: values,
		}},
		Layout: Layout{Title: "Call Outcomes Distribution", Height: chartHeight},
	}

	labels, values = split(s.Sentiment)
	figures[ChartSentiment] = Figure{
		Data: []Trace{{
			Type:   "bar",
			Name:   "Sentiment",
			X:      labels,
			Y:      values,
			Marker: &Marker{Color: sentimentColors},
		}},
		Layout: Layout{
			Title:  "Carrier Sentiment Analysis",
			XAxis:  &Axis{Title: "Sentiment"},
			YAxis:  &Axis{Title: "Number of Calls"},
			Height: chartHeight,
		},
	}

	labels, values = split(s.DailyVolume)
	figures[ChartDailyVolume] = Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			Name: "Daily Calls",
			X:    labels,
			Y:    values,
		}},
		Layout: Layout{
			Title:  "Daily Call Volume",
			XAxis:  &Axis{Title: "Date"},
			YAxis:  &Axis{Title: "Number of Calls"},
			Height: chartHeight,
		},
	}

	if len(s.RateDifferences) > 0 {
		figures[ChartRateNegotiation] = Figure{
			Data: []Trace{{
				Type:   "histogram",
				Name:   "Rate Differences",
				X:      s.RateDifferences,
				NBinsX: 20,
			}},
			Layout: Layout{
				Title:  "Rate Negotiation Distribution",
				XAxis:  &Axis{Title: "Rate Difference ($)"},
				YAxis:  &Axis{Title: "Frequency"},
				Height: chartHeight,
			},
		}
	}

	figures[ChartDurationSuccess] = Figure{
		Data: []Trace{
			boxTrace("Accepted Loads", "Accepted", s.AcceptedDurations),
			boxTrace("Rejected Loads", "Rejected", s.RejectedDurations),
		},
		Layout: Layout{
			Title:  "Call Duration by Load Acceptance",
			XAxis:  &Axis{Title: "Call Duration (seconds)"},
			Height: chartHeight,
		},
	}

	return figures
}

func split(counts []Count) ([]string, []int) {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = c.Count
	}
	return labels, values
}

// boxTrace builds a horizontal box trace: durations on x, a constant category on y.
func boxTrace(name, category string, durations []float64) Trace {
	ys := make([]string, len(durations))
	for i := range ys {
		ys[i] = category
	}
	return Trace{
		Type: "box",
		Name: name,
		X:    durations,
		Y:    ys,
	}
}
