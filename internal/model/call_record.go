package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Rates are emitted as JSON numbers, the same shape the voice agent posts them in.
	decimal.MarshalJSONWithoutQuotes = true
}

// CallRecordColumns is the column order of the persisted call log.
var CallRecordColumns = []string{
	"timestamp",
	"mc_number",
	"carrier_name",
	"call_duration",
	"load_id",
	"outcome",
	"sentiment",
	"negotiation_rounds",
	"initial_rate",
	"final_rate",
	"rate_difference",
	"load_accepted",
}

// Well-known outcome and sentiment values. Neither field is an enforced enum.
const (
	OutcomeSuccessful  = "successful"
	OutcomeFailed      = "failed"
	OutcomeTransferred = "transferred"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// CallRecord is the logged outcome of one inbound carrier call.
// Records are append-only: once stored they are never mutated or deleted.
type CallRecord struct {
	// ID is the insertion sequence number used by SQL backends to keep insertion order.
	ID int64 `gorm:"column:id;primaryKey" json:"-"`

	// Timestamp is assigned by the store at append time, never by the client.
	Timestamp time.Time `gorm:"column:timestamp" json:"timestamp"`

	MCNumber    string `gorm:"column:mc_number" json:"mc_number"`
	CarrierName string `gorm:"column:carrier_name" json:"carrier_name"`

	// CallDuration is the call length in seconds.
	CallDuration float64 `gorm:"column:call_duration" json:"call_duration"`

	// LoadID references a catalog load. It is not validated for existence.
	LoadID string `gorm:"column:load_id" json:"load_id"`

	Outcome   string `gorm:"column:outcome" json:"outcome"`
	Sentiment string `gorm:"column:sentiment" json:"sentiment"`

	NegotiationRounds int `gorm:"column:negotiation_rounds" json:"negotiation_rounds"`

	InitialRate decimal.Decimal `gorm:"column:initial_rate" json:"initial_rate"`
	FinalRate   decimal.Decimal `gorm:"column:final_rate" json:"final_rate"`

	// RateDifference is nullable: legacy rows may carry no value at all.
	RateDifference decimal.NullDecimal `gorm:"column:rate_difference" json:"rate_difference"`

	LoadAccepted bool `gorm:"column:load_accepted" json:"load_accepted"`
}

func (CallRecord) TableName() string {
	return "call_records"
}

// Lookup returns the string representation of a call log column.
func (r CallRecord) Lookup(field string) (string, bool) {
	switch field {
	case "timestamp":
		return r.Timestamp.Format(time.RFC3339Nano), true
	case "mc_number":
		return r.MCNumber, true
	case "carrier_name":
		return r.CarrierName, true
	case "call_duration":
		return formatNumber(r.CallDuration), true
	case "load_id":
		return r.LoadID, true
	case "outcome":
		return r.Outcome, true
	case "sentiment":
		return r.Sentiment, true
	case "negotiation_rounds":
		return strconv.Itoa(r.NegotiationRounds), true
	case "initial_rate":
		return r.InitialRate.String(), true
	case "final_rate":
		return r.FinalRate.String(), true
	case "rate_difference":
		if !r.RateDifference.Valid {
			return "", true
		}
		return r.RateDifference.Decimal.String(), true
	case "load_accepted":
		return strconv.FormatBool(r.LoadAccepted), true
	}
	return "", false
}

// CallFilter holds the optional exact-match filters of a call log query.
// Values are raw query parameters; an empty value means the filter is omitted.
type CallFilter struct {
	Outcome      string
	Sentiment    string
	LoadAccepted string
}

// IsEmpty reports whether no filter is set.
func (f CallFilter) IsEmpty() bool {
	return f.Outcome == "" && f.Sentiment == "" && f.LoadAccepted == ""
}
