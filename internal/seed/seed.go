// Package seed provides the sample load catalog used for local development and demos.
package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/repository"
	"github.com/shopspring/decimal"
)

func load(id, origin, destination, pickup, delivery, equipment string, rate int64, notes string,
	weight float64, commodity string, pieces int, miles float64, dimensions string) model.Load {
	return model.Load{
		LoadID:           id,
		Origin:           origin,
		Destination:      destination,
		PickupDatetime:   pickup,
		DeliveryDatetime: delivery,
		EquipmentType:    equipment,
		LoadboardRate:    decimal.NewFromInt(rate),
		Notes:            notes,
		Weight:           weight,
		CommodityType:    commodity,
		NumOfPieces:      pieces,
		Miles:            miles,
		Dimensions:       dimensions,
	}
}

// SampleLoads returns ten loads covering the common equipment types.
func SampleLoads() []model.Load {
	return []model.Load{
		load("L001", "Los Angeles, CA", "Las Vegas, NV", "2025-10-10 08:00", "2025-10-10 14:00", "Reefer", 1500, "Handle with care", 12000, "Produce", 100, 270, "48x40x96"),
		load("L002", "Chicago, IL", "Detroit, MI", "2025-10-12 09:30", "2025-10-12 13:00", "Dry Van", 800, "", 8000, "Electronics", 50, 283, "48x40x60"),
		load("L003", "Houston, TX", "Atlanta, GA", "2025-10-15 07:00", "2025-10-16 18:00", "Flatbed", 2200, "Oversize - permit required", 20000, "Steel", 10, 800, "240x96x60"),
		load("L004", "Seattle, WA", "Portland, OR", "2025-10-20 10:00", "2025-10-20 15:00", "Dry Van", 600, "Short haul", 5000, "Furniture", 8, 174, "60x48x72"),
		load("L005", "Miami, FL", "Orlando, FL", "2025-10-18 06:00", "2025-10-18 11:00", "Reefer", 400, "Temperature controlled", 6000, "Pharmaceuticals", 20, 230, "48x40x60"),
		load("L006", "Newark, NJ", "Boston, MA", "2025-10-22 12:00", "2025-10-22 18:00", "Dry Van", 950, "", 10000, "Retail Goods", 200, 220, "48x40x72"),
		load("L007", "Phoenix, AZ", "Denver, CO", "2025-10-25 05:30", "2025-10-25 18:00", "Flatbed", 1800, "Load with tie-downs", 15000, "Machinery", 3, 825, "120x80x80"),
		load("L008", "San Francisco, CA", "Sacramento, CA", "2025-10-30 09:00", "2025-10-30 12:00", "Dry Van", 350, "", 4000, "Clothing", 500, 87, "48x40x60"),
		load("L009", "Cleveland, OH", "Columbus, OH", "2025-11-01 07:00", "2025-11-01 10:00", "Dry Van", 275, "Local delivery", 3000, "Parts", 120, 140, "48x40x48"),
		load("L010", "Minneapolis, MN", "St. Paul, MN", "2025-11-03 08:00", "2025-11-03 09:30", "Dry Van", 200, "Quick hop", 2500, "Food", 60, 15, "48x40x48"),
	}
}

// WriteCatalog writes the sample loads to path, replacing any existing file.
func WriteCatalog(path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create catalog dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create catalog: %w", err)
	}
	defer f.Close()

	loads := SampleLoads()
	if err := repository.WriteLoads(f, loads); err != nil {
		return 0, fmt.Errorf("write catalog: %w", err)
	}
	return len(loads), f.Close()
}
