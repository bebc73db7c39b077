package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// callField describes one client-supplied call field: its name, the value used when the
// field is absent from the payload, and how a present value is decoded.
type callField struct {
	name       string
	setDefault func(*CallRecord)
	decode     func(*CallRecord, json.RawMessage) error
}

func field[T any](name string, def T, parse func(json.RawMessage) (T, error), set func(*CallRecord, T)) callField {
	return callField{
		name:       name,
		setDefault: func(r *CallRecord) { set(r, def) },
		decode: func(r *CallRecord, raw json.RawMessage) error {
			v, err := parse(raw)
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			set(r, v)
			return nil
		},
	}
}

// callFields is the complete mapping from payload field to default.
// The timestamp is deliberately absent: it is always assigned by the store.
var callFields = []callField{
	field("mc_number", "", parseString, func(r *CallRecord, v string) { r.MCNumber = v }),
	field("carrier_name", "", parseString, func(r *CallRecord, v string) { r.CarrierName = v }),
	field("call_duration", 0.0, parseFloat, func(r *CallRecord, v float64) { r.CallDuration = math.Max(v, 0) }),
	field("load_id", "", parseString, func(r *CallRecord, v string) { r.LoadID = v }),
	field("outcome", "", parseString, func(r *CallRecord, v string) { r.Outcome = v }),
	field("sentiment", "", parseString, func(r *CallRecord, v string) { r.Sentiment = v }),
	field("negotiation_rounds", 0, parseInt, func(r *CallRecord, v int) { r.NegotiationRounds = max(v, 0) }),
	field("initial_rate", decimal.Zero, parseDecimal, func(r *CallRecord, v decimal.Decimal) { r.InitialRate = v }),
	field("final_rate", decimal.Zero, parseDecimal, func(r *CallRecord, v decimal.Decimal) { r.FinalRate = v }),
	field("rate_difference", decimal.NewNullDecimal(decimal.Zero), parseNullDecimal,
		func(r *CallRecord, v decimal.NullDecimal) { r.RateDifference = v }),
	field("load_accepted", false, parseBool, func(r *CallRecord, v bool) { r.LoadAccepted = v }),
}

// CallFieldNames lists the payload fields understood by NewCallRecord, in column order.
func CallFieldNames() []string {
	names := make([]string, 0, len(callFields))
	for _, f := range callFields {
		names = append(names, f.name)
	}
	return names
}

// NewCallRecord builds a call record from a decoded JSON object.
// Every absent field takes its default; unknown fields are ignored.
// A field holding a value of the wrong JSON type yields a *FieldError wrapping ErrFieldType.
func NewCallRecord(payload map[string]json.RawMessage) (CallRecord, error) {
	var r CallRecord
	for _, f := range callFields {
		raw, ok := payload[f.name]
		if !ok {
			f.setDefault(&r)
			continue
		}
		if err := f.decode(&r, raw); err != nil {
			return CallRecord{}, err
		}
	}
	return r, nil
}

type jsonKind int

const (
	jsonNull jsonKind = iota
	jsonString
	jsonNumber
	jsonBool
	jsonOther
)

func kindOf(raw json.RawMessage) jsonKind {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return jsonNull
	}
	switch b[0] {
	case 'n':
		return jsonNull
	case '"':
		return jsonString
	case 't', 'f':
		return jsonBool
	case '{', '[':
		return jsonOther
	}
	return jsonNumber
}

func unquote(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFieldType, err)
	}
	return strings.TrimSpace(s), nil
}

func parseString(raw json.RawMessage) (string, error) {
	switch kindOf(raw) {
	case jsonNull:
		return "", nil
	case jsonString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrFieldType, err)
		}
		return s, nil
	case jsonNumber, jsonBool:
		return string(bytes.TrimSpace(raw)), nil
	}
	return "", fmt.Errorf("%w: want string, got %s", ErrFieldType, raw)
}

func parseFloat(raw json.RawMessage) (float64, error) {
	text, err := numericText(raw)
	if err != nil || text == "" {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: want number, got %s", ErrFieldType, raw)
	}
	return v, nil
}

func parseInt(raw json.RawMessage) (int, error) {
	v, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: want integer, got %s", ErrFieldType, raw)
	}
	// float64(math.MaxInt) rounds up to 2^63, itself out of range
	if v < float64(math.MinInt) || v >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: integer out of range, got %s", ErrFieldType, raw)
	}
	return int(v), nil
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	text, err := numericText(raw)
	if err != nil || text == "" {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: want decimal, got %s", ErrFieldType, raw)
	}
	return d, nil
}

func parseNullDecimal(raw json.RawMessage) (decimal.NullDecimal, error) {
	if kindOf(raw) == jsonNull {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func parseBool(raw json.RawMessage) (bool, error) {
	var text string
	switch kindOf(raw) {
	case jsonNull:
		return false, nil
	case jsonBool, jsonNumber:
		text = string(bytes.TrimSpace(raw))
	case jsonString:
		s, err := unquote(raw)
		if err != nil {
			return false, err
		}
		text = strings.ToLower(s)
	default:
		return false, fmt.Errorf("%w: want boolean, got %s", ErrFieldType, raw)
	}
	b, err := strconv.ParseBool(text)
	if err != nil {
		return false, fmt.Errorf("%w: want boolean, got %s", ErrFieldType, raw)
	}
	return b, nil
}

// numericText returns the textual form of a JSON number or numeric string.
// null and the empty string yield "".
func numericText(raw json.RawMessage) (string, error) {
	switch kindOf(raw) {
	case jsonNull:
		return "", nil
	case jsonNumber:
		return string(bytes.TrimSpace(raw)), nil
	case jsonString:
		return unquote(raw)
	}
	return "", fmt.Errorf("%w: want number, got %s", ErrFieldType, raw)
}
