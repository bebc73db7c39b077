package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/navid-fn/carrier-sales/internal/analytics"
	"github.com/navid-fn/carrier-sales/internal/handoff"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var p map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestLoadServiceSearch(t *testing.T) {
	svc := NewLoadService(repository.NewLoadRepository([]model.Load{
		{LoadID: "L001", Origin: "Chicago, IL", Destination: "Dallas, TX", LoadboardRate: decimal.NewFromInt(1500), Miles: 925},
		{LoadID: "L002", Origin: "Atlanta, GA", Destination: "Miami, FL"},
	}))

	res := svc.Search(map[string]string{"origin": "CHICAGO"})
	assert.Equal(t, "Matched 1 loads.", res.Message)
	assert.Contains(t, res.Results, "load_id: L001, origin: Chicago, IL, destination: Dallas, TX")
	assert.Contains(t, res.Results, "loadboard_rate: 1500")
	assert.Contains(t, res.Results, "miles: 925")
	assert.NotContains(t, res.Results, "\n")

	res = svc.Search(nil)
	assert.Equal(t, "Matched 2 loads.", res.Message)
	assert.Len(t, strings.Split(res.Results, "\n"), 2)

	res = svc.Search(map[string]string{"origin": "Boston"})
	assert.Equal(t, LoadSearchResult{Message: "No matching records found.", Results: ""}, res)
}

func TestCallMetricsServiceLogAndList(t *testing.T) {
	logger, _ := test.NewNullLogger()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryCallRepository(repository.WithClock(func() time.Time { return at }))
	svc := NewCallMetricsService(repo, logger)
	ctx := context.Background()

	rec, err := svc.Log(ctx, payload(t, `{"mc_number":"MC1","outcome":"successful","load_accepted":true,"timestamp":"1999-01-01"}`))
	require.NoError(t, err)
	assert.True(t, rec.Timestamp.Equal(at), "the store assigns the timestamp")

	_, err = svc.Log(ctx, payload(t, `{"mc_number":"MC2","outcome":"failed"}`))
	require.NoError(t, err)

	all, err := svc.List(ctx, model.CallFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "MC2", all[1].MCNumber)

	accepted, err := svc.List(ctx, model.CallFilter{LoadAccepted: "true"})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "MC1", accepted[0].MCNumber)

	assert.NoError(t, svc.Healthy(ctx))
}

func TestCallMetricsServiceRejectsWrongTypes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := repository.NewMemoryCallRepository()
	svc := NewCallMetricsService(repo, logger)

	_, err := svc.Log(context.Background(), payload(t, `{"call_duration":{"seconds":3}}`))
	assert.ErrorIs(t, err, model.ErrFieldType)

	all, err := svc.List(context.Background(), model.CallFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected payload is not stored")
}

type failingRepo struct {
	repository.CallRecordRepository
}

var errStore = errors.New("disk full")

func (failingRepo) Append(context.Context, *model.CallRecord) error { return errStore }
func (failingRepo) Find(context.Context, model.CallFilter) ([]model.CallRecord, error) {
	return nil, errStore
}

func TestServicesWrapStoreErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	_, err := NewCallMetricsService(failingRepo{}, logger).Log(ctx, map[string]json.RawMessage{})
	assert.ErrorIs(t, err, errStore)

	_, err = NewDashboardService(failingRepo{}).Data(ctx)
	assert.ErrorIs(t, err, errStore)
}

func TestDashboardServiceData(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := repository.NewMemoryCallRepository()
	ctx := context.Background()
	dash := NewDashboardService(repo)

	empty, err := dash.Data(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Metrics.TotalCalls)
	assert.NotNil(t, empty.Charts)
	assert.Empty(t, empty.Charts)

	calls := NewCallMetricsService(repo, logger)
	for _, body := range []string{
		`{"outcome":"successful","call_duration":100,"load_accepted":true,"rate_difference":null}`,
		`{"outcome":"successful","call_duration":200,"load_accepted":true,"rate_difference":null}`,
		`{"outcome":"failed","call_duration":50,"rate_difference":null}`,
	} {
		_, err := calls.Log(ctx, payload(t, body))
		require.NoError(t, err)
	}

	data, err := dash.Data(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, data.Metrics.TotalCalls)
	assert.Equal(t, "66.67", data.Metrics.SuccessRate.String())
	assert.NotContains(t, data.Charts, analytics.ChartRateNegotiation)
	assert.Equal(t, []float64{100, 200}, data.Charts[analytics.ChartDurationSuccess].Data[0].X)
}

func TestDashboardServiceSurvivesNonFiniteCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"timestamp,mc_number,carrier_name,call_duration,load_id,outcome,sentiment,"+
			"negotiation_rounds,initial_rate,final_rate,rate_difference,load_accepted\n"+
			"2025-06-01T10:00:00Z,MC1,Good,100,L001,successful,positive,2,1500,1500,0,True\n"+
			"2025-06-01T11:00:00Z,MC2,Bad,NaN,L002,failed,negative,NaN,900,900,,False\n"), 0o644))
	logger, _ := test.NewNullLogger()
	repo, err := repository.NewCSVCallRepository(path, logger)
	require.NoError(t, err)
	ctx := context.Background()

	var data DashboardData
	require.NotPanics(t, func() { data, err = NewDashboardService(repo).Data(ctx) })
	require.NoError(t, err)
	assert.Equal(t, 2, data.Metrics.TotalCalls)
	assert.Equal(t, "50", data.Metrics.AvgCallDuration.String())
	assert.Equal(t, "1", data.Metrics.AvgNegotiationRounds.String())

	_, err = json.Marshal(data)
	assert.NoError(t, err)

	records, err := NewCallMetricsService(repo, logger).List(ctx, model.CallFilter{})
	require.NoError(t, err)
	_, err = json.Marshal(records)
	assert.NoError(t, err, "the call list stays encodable")
}

type recordingDispatcher struct {
	got []handoff.Transfer
	err error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, t handoff.Transfer) error {
	d.got = append(d.got, t)
	return d.err
}

func (d *recordingDispatcher) Close() error { return nil }

func TestTransferService(t *testing.T) {
	d := &recordingDispatcher{}
	svc := NewTransferService(d)
	ctx := context.Background()

	tr, err := svc.Transfer(ctx, payload(t, `{"message":"MC1 wants L001"}`))
	require.NoError(t, err)
	assert.Equal(t, "MC1 wants L001", tr.Message)
	require.Len(t, d.got, 1)
	assert.Equal(t, tr.ID, d.got[0].ID)

	tr, err = svc.Transfer(ctx, payload(t, `{"message":42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", tr.Message)

	_, err = svc.Transfer(ctx, payload(t, `{"note":"no message"}`))
	assert.ErrorIs(t, err, handoff.ErrMissingMessage)
	assert.Len(t, d.got, 2, "nothing is dispatched without a message")

	d.err = errors.New("sales webhook down")
	_, err = svc.Transfer(ctx, payload(t, `{"message":"x"}`))
	assert.ErrorIs(t, err, d.err)
}
