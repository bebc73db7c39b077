// Package analytics aggregates the call log into dashboard metrics and chart series.
package analytics

import (
	"math"
	"sort"

	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/utils"
	"github.com/shopspring/decimal"
)

// Metrics are the headline figures of the dashboard.
// Ratios and averages are rounded to two decimals, half away from zero.
type Metrics struct {
	TotalCalls           int             `json:"total_calls"`
	SuccessfulCalls      int             `json:"successful_calls"`
	SuccessRate          decimal.Decimal `json:"success_rate"`
	AvgCallDuration      decimal.Decimal `json:"avg_call_duration"`
	AvgNegotiationRounds decimal.Decimal `json:"avg_negotiation_rounds"`
	LoadsAccepted        int             `json:"loads_accepted"`
}

// Count is one bucket of a categorical distribution.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series holds the per-chart inputs derived from a non-empty call log.
type Series struct {
	// Outcomes and Sentiment are ordered by count descending, ties in first-seen order.
	Outcomes  []Count
	Sentiment []Count

	// DailyVolume is keyed by calendar date (YYYY-MM-DD), ascending. Days without calls are absent.
	DailyVolume []Count

	// RateDifferences lists the present rate differences in log order; nil when none is present.
	RateDifferences []float64

	AcceptedDurations []float64
	RejectedDurations []float64
}

// Report is a full snapshot of the call log.
type Report struct {
	Metrics Metrics
	// Series is nil for an empty log.
	Series *Series
}

var hundred = decimal.NewFromInt(100)

// Summarize computes metrics and series over every record.
func Summarize(records []model.CallRecord) Report {
	report := Report{Metrics: Metrics{
		SuccessRate:          decimal.Zero,
		AvgCallDuration:      decimal.Zero,
		AvgNegotiationRounds: decimal.Zero,
	}}
	if len(records) == 0 {
		return report
	}

	total := decimal.NewFromInt(int64(len(records)))
	durationSum := decimal.Zero
	roundsSum := 0

	series := &Series{
		AcceptedDurations: make([]float64, 0),
		RejectedDurations: make([]float64, 0),
	}
	outcomes := newCounter()
	sentiment := newCounter()
	days := make(map[string]int)

	for _, r := range records {
		if r.Outcome == model.OutcomeSuccessful {
			report.Metrics.SuccessfulCalls++
		}
		duration := finite(r.CallDuration)
		if r.LoadAccepted {
			report.Metrics.LoadsAccepted++
			series.AcceptedDurations = append(series.AcceptedDurations, duration)
		} else {
			series.RejectedDurations = append(series.RejectedDurations, duration)
		}
		durationSum = durationSum.Add(decimal.NewFromFloat(duration))
		roundsSum += r.NegotiationRounds

		outcomes.add(r.Outcome)
		sentiment.add(r.Sentiment)
		days[utils.CalendarDate(r.Timestamp)]++

		if r.RateDifference.Valid {
			f, _ := r.RateDifference.Decimal.Float64()
			series.RateDifferences = append(series.RateDifferences, f)
		}
	}

	report.Metrics.TotalCalls = len(records)
	report.Metrics.SuccessRate = decimal.NewFromInt(int64(report.Metrics.SuccessfulCalls)).
		Mul(hundred).Div(total).Round(2)
	report.Metrics.AvgCallDuration = durationSum.Div(total).Round(2)
	report.Metrics.AvgNegotiationRounds = decimal.NewFromInt(int64(roundsSum)).Div(total).Round(2)

	series.Outcomes = outcomes.sorted()
	series.Sentiment = sentiment.sorted()
	series.DailyVolume = dailyVolume(days)

	report.Series = series
	return report
}

// counter tallies labels and remembers first-seen order. Empty labels are not counted.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if label == "" {
		return
	}
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

func (c *counter) sorted() []Count {
	out := make([]Count, len(c.order))
	for i, label := range c.order {
		out[i] = Count{Label: label, Count: c.counts[label]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func dailyVolume(days map[string]int) []Count {
	out := make([]Count, 0, len(days))
	for day, n := range days {
		out = append(out, Count{Label: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Label < out[j].Label
	})
	return out
}

// finite maps NaN and infinities to zero, the value of any unreadable number.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
