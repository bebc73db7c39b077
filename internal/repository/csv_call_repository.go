package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// csvCallRepository stores the call log as a flat CSV file.
// Every append reads the whole file, adds one row and rewrites the file. The mutex makes that
// cycle safe inside one process; several processes sharing the file can still lose rows.
type csvCallRepository struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	logger logrus.FieldLogger
}

// NewCSVCallRepository opens the call log at path, creating it with a header row when absent.
func NewCSVCallRepository(path string, logger logrus.FieldLogger, opts ...Option) (CallRecordRepository, error) {
	o := buildOptions(opts)
	r := &csvCallRepository{
		path:   path,
		now:    o.now,
		logger: logger.WithField("file", path),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create call log dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.writeFile(model.CallRecordColumns, nil); err != nil {
			return nil, fmt.Errorf("initialize call log: %w", err)
		}
		r.logger.Info("Created empty call log")
	} else if err != nil {
		return nil, fmt.Errorf("stat call log: %w", err)
	}
	return r, nil
}

func (r *csvCallRepository) Append(_ context.Context, record *model.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	header, rows, err := r.readFile()
	if err != nil {
		return err
	}

	var last time.Time
	for i := len(rows) - 1; i >= 0; i-- {
		if rec, err := r.parseRow(header, rows[i], i+2); err == nil {
			last = rec.Timestamp
			break
		}
	}
	stamp(record, r.now, last)

	row := make([]string, len(header))
	for i, col := range header {
		row[i], _ = record.Lookup(col)
	}
	rows = append(rows, row)
	record.ID = int64(len(rows))

	return r.writeFile(header, rows)
}

func (r *csvCallRepository) Find(_ context.Context, filter model.CallFilter) ([]model.CallRecord, error) {
	r.mu.Lock()
	header, rows, err := r.readFile()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	records := make([]model.CallRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := r.parseRow(header, row, i+2)
		if err != nil {
			r.logger.WithField("line", i+2).Warnf("Skipping malformed call row: %v", err)
			continue
		}
		rec.ID = int64(i + 1)
		records = append(records, rec)
	}
	return filterCalls(records, filter), nil
}

func (r *csvCallRepository) Ping(context.Context) error {
	_, err := os.Stat(r.path)
	return err
}

func (r *csvCallRepository) Close() error { return nil }

// readFile returns the header and raw data rows. Raw rows are kept verbatim so that
// rewriting the file never drops a row this version cannot parse.
func (r *csvCallRepository) readFile() ([]string, [][]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open call log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return append([]string(nil), model.CallRecordColumns...), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read call log header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read call log: %w", err)
	}
	return header, rows, nil
}

func (r *csvCallRepository) writeFile(header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".call_metrics-*.csv")
	if err != nil {
		return fmt.Errorf("create temp call log: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write call log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync call log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace call log: %w", err)
	}
	return nil
}

// parseRow converts a raw row into a record. A row whose width differs from the header
// or whose timestamp is unreadable is rejected; malformed numeric cells are coerced to zero.
func (r *csvCallRepository) parseRow(header, row []string, line int) (model.CallRecord, error) {
	if len(row) != len(header) {
		return model.CallRecord{}, fmt.Errorf("row has %d fields, header has %d", len(row), len(header))
	}

	var rec model.CallRecord
	seenTimestamp := false
	for i, col := range header {
		cell := strings.TrimSpace(row[i])
		if col == "timestamp" {
			ts, err := utils.ParseTimestamp(cell)
			if err != nil {
				return model.CallRecord{}, err
			}
			rec.Timestamp = ts
			seenTimestamp = true
			continue
		}
		set, ok := callCellSetters[col]
		if !ok {
			continue
		}
		if err := set(&rec, cell); err != nil {
			r.logger.WithFields(logrus.Fields{"line": line, "column": col}).
				Debugf("Coercing malformed call cell to zero: %v", err)
		}
	}
	if !seenTimestamp {
		return model.CallRecord{}, fmt.Errorf("row has no timestamp")
	}
	return rec, nil
}

var callCellSetters = map[string]func(r *model.CallRecord, v string) error{
	"mc_number":    func(r *model.CallRecord, v string) error { r.MCNumber = v; return nil },
	"carrier_name": func(r *model.CallRecord, v string) error { r.CarrierName = v; return nil },
	"call_duration": func(r *model.CallRecord, v string) (err error) {
		r.CallDuration, err = parseFloatCell(v)
		return err
	},
	"load_id":   func(r *model.CallRecord, v string) error { r.LoadID = v; return nil },
	"outcome":   func(r *model.CallRecord, v string) error { r.Outcome = v; return nil },
	"sentiment": func(r *model.CallRecord, v string) error { r.Sentiment = v; return nil },
	"negotiation_rounds": func(r *model.CallRecord, v string) error {
		f, err := parseFloatCell(v)
		r.NegotiationRounds = int(f)
		return err
	},
	"initial_rate": func(r *model.CallRecord, v string) (err error) {
		r.InitialRate, err = parseDecimalCell(v)
		return err
	},
	"final_rate": func(r *model.CallRecord, v string) (err error) {
		r.FinalRate, err = parseDecimalCell(v)
		return err
	},
	"rate_difference": func(r *model.CallRecord, v string) error {
		if v == "" || strings.EqualFold(v, "nan") {
			r.RateDifference = decimal.NullDecimal{}
			return nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			r.RateDifference = decimal.NullDecimal{}
			return err
		}
		r.RateDifference = decimal.NewNullDecimal(d)
		return nil
	},
	"load_accepted": func(r *model.CallRecord, v string) error {
		if v == "" {
			r.LoadAccepted = false
			return nil
		}
		b, err := strconv.ParseBool(strings.ToLower(v))
		r.LoadAccepted = b
		return err
	},
}
