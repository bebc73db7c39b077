package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/query"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LoadRepository is the read-only load catalog.
type LoadRepository interface {
	// Find returns the loads whose columns contain every filter value, ignoring case.
	// Keys that are not catalog columns are ignored. Order follows the catalog.
	Find(filters map[string]string) []model.Load

	// Count returns the catalog size.
	Count() int
}

type memoryLoadRepository struct {
	loads []model.Load
}

// NewLoadRepository serves an already loaded catalog.
func NewLoadRepository(loads []model.Load) LoadRepository {
	return &memoryLoadRepository{loads: loads}
}

// NewCSVLoadRepository reads the catalog file once. Any error here is fatal for startup.
func NewCSVLoadRepository(path string, logger logrus.FieldLogger) (LoadRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open load catalog: %w", err)
	}
	defer f.Close()

	loads, err := ReadLoads(f, logger.WithField("file", path))
	if err != nil {
		return nil, fmt.Errorf("read load catalog %s: %w", path, err)
	}
	logger.WithFields(logrus.Fields{"file": path, "loads": len(loads)}).Info("Load catalog ready")
	return NewLoadRepository(loads), nil
}

func (r *memoryLoadRepository) Find(filters map[string]string) []model.Load {
	return query.Select(r.loads, query.Substring, query.FromMap(filters, model.LoadColumns)...)
}

func (r *memoryLoadRepository) Count() int {
	return len(r.loads)
}

// loadSetters assigns a raw cell to the matching Load field.
var loadSetters = map[string]func(l *model.Load, v string) error{
	"load_id":           func(l *model.Load, v string) error { l.LoadID = v; return nil },
	"origin":            func(l *model.Load, v string) error { l.Origin = v; return nil },
	"destination":       func(l *model.Load, v string) error { l.Destination = v; return nil },
	"pickup_datetime":   func(l *model.Load, v string) error { l.PickupDatetime = v; return nil },
	"delivery_datetime": func(l *model.Load, v string) error { l.DeliveryDatetime = v; return nil },
	"equipment_type":    func(l *model.Load, v string) error { l.EquipmentType = v; return nil },
	"loadboard_rate": func(l *model.Load, v string) (err error) {
		l.LoadboardRate, err = parseDecimalCell(v)
		return err
	},
	"notes": func(l *model.Load, v string) error { l.Notes = v; return nil },
	"weight": func(l *model.Load, v string) (err error) {
		l.Weight, err = parseFloatCell(v)
		return err
	},
	"commodity_type": func(l *model.Load, v string) error { l.CommodityType = v; return nil },
	"num_of_pieces": func(l *model.Load, v string) error {
		f, err := parseFloatCell(v)
		l.NumOfPieces = int(f)
		return err
	},
	"miles": func(l *model.Load, v string) (err error) {
		l.Miles, err = parseFloatCell(v)
		return err
	},
	"dimensions": func(l *model.Load, v string) error { l.Dimensions = v; return nil },
}

// ReadLoads parses a catalog CSV whose first row names the columns.
// Unknown columns are ignored; a malformed numeric cell becomes zero and is logged.
func ReadLoads(r io.Reader, logger logrus.FieldLogger) ([]model.Load, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty catalog: missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var loads []model.Load
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var l model.Load
		for i, col := range header {
			set, ok := loadSetters[col]
			if !ok || i >= len(record) {
				continue
			}
			if err := set(&l, strings.TrimSpace(record[i])); err != nil {
				logger.WithFields(logrus.Fields{"line": line, "column": col}).
					Warnf("Malformed catalog cell, using zero: %v", err)
			}
		}
		loads = append(loads, l)
	}
	return loads, nil
}

// WriteLoads writes loads as a catalog CSV with a header row.
func WriteLoads(w io.Writer, loads []model.Load) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(model.LoadColumns); err != nil {
		return err
	}
	for _, l := range loads {
		row := make([]string, len(model.LoadColumns))
		for i, col := range model.LoadColumns {
			row[i], _ = l.Lookup(col)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseFloatCell(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", v)
	}
	return f, nil
}

func parseDecimalCell(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
