// Package model defines the domain models shared by the repositories, services and handlers.
package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LoadColumns is the canonical column order of the load catalog.
// It drives both CSV parsing and the human-readable rendering of search results.
var LoadColumns = []string{
	"load_id",
	"origin",
	"destination",
	"pickup_datetime",
	"delivery_datetime",
	"equipment_type",
	"loadboard_rate",
	"notes",
	"weight",
	"commodity_type",
	"num_of_pieces",
	"miles",
	"dimensions",
}

// Load represents a bookable freight shipment listed for carriers.
// Loads are read once at startup and never mutated afterwards.
type Load struct {
	// LoadID is the unique key of the load (e.g., "L001").
	LoadID string `json:"load_id"`

	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// PickupDatetime and DeliveryDatetime are kept as free-form strings,
	// exactly as they appear in the catalog source.
	PickupDatetime   string `json:"pickup_datetime"`
	DeliveryDatetime string `json:"delivery_datetime"`

	// EquipmentType is the trailer type: "Dry Van", "Reefer", "Flatbed", ...
	EquipmentType string `json:"equipment_type"`

	// LoadboardRate is the posted rate in dollars.
	LoadboardRate decimal.Decimal `json:"loadboard_rate"`

	Notes         string  `json:"notes"`
	Weight        float64 `json:"weight"`
	CommodityType string  `json:"commodity_type"`
	NumOfPieces   int     `json:"num_of_pieces"`
	Miles         float64 `json:"miles"`
	Dimensions    string  `json:"dimensions"`
}

// Lookup returns the string representation of a catalog column.
// The second return value is false when the load has no such column.
func (l Load) Lookup(field string) (string, bool) {
	switch field {
	case "load_id":
		return l.LoadID, true
	case "origin":
		return l.Origin, true
	case "destination":
		return l.Destination, true
	case "pickup_datetime":
		return l.PickupDatetime, true
	case "delivery_datetime":
		return l.DeliveryDatetime, true
	case "equipment_type":
		return l.EquipmentType, true
	case "loadboard_rate":
		return l.LoadboardRate.String(), true
	case "notes":
		return l.Notes, true
	case "weight":
		return formatNumber(l.Weight), true
	case "commodity_type":
		return l.CommodityType, true
	case "num_of_pieces":
		return strconv.Itoa(l.NumOfPieces), true
	case "miles":
		return formatNumber(l.Miles), true
	case "dimensions":
		return l.Dimensions, true
	}
	return "", false
}

// formatNumber renders integral floats without a fractional part ("12000", not "12000.0").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
