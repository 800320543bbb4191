package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

type engineSpy struct {
	availability AvailabilityInput
	schedule     ScheduleInput
	poolID       int64
	period       string
	calls        int

	slots  []models.AvailabilitySlot
	rows   []models.CapacityRow
	result *models.ScheduleResult
	err    error
}

func (e *engineSpy) QueryCapacity(_ context.Context, poolID int64, period string) ([]models.CapacityRow, error) {
	e.calls++
	e.poolID, e.period = poolID, period
	return e.rows, e.err
}

func (e *engineSpy) ComputeAvailability(_ context.Context, in AvailabilityInput) ([]models.AvailabilitySlot, error) {
	e.calls++
	e.availability = in
	return e.slots, e.err
}

func (e *engineSpy) Schedule(_ context.Context, in ScheduleInput) (*models.ScheduleResult, error) {
	e.calls++
	e.schedule = in
	return e.result, e.err
}

func (e *engineSpy) InvalidateCapacity(_ context.Context, poolID int64) error {
	e.calls++
	e.poolID = poolID
	return e.err
}

func qty(v int) *int { return &v }

func TestSchedulingServiceAvailabilityParsesDates(t *testing.T) {
	engine := &engineSpy{slots: []models.AvailabilitySlot{{Date: "2024-01-01", CategoryID: 5}}}
	svc := NewSchedulingService(engine, nil, nil)

	slots, err := svc.Availability(context.Background(), dto.AvailabilityRequest{
		PoolID: 10, Fechas: " 2024-01-01, ,2024-01-08,", Cantidad: qty(30), OrderID: 7, Periodo: " 3 ",
	})
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, AvailabilityInput{
		PoolID: 10, Dates: []string{"2024-01-01", "2024-01-08"}, Quantity: 30, OrderID: 7, Period: "3",
	}, engine.availability)
}

func TestSchedulingServiceAvailabilityValidation(t *testing.T) {
	cases := []struct {
		name    string
		req     dto.AvailabilityRequest
		message string
	}{
		{"missing pool", dto.AvailabilityRequest{Fechas: "2024-01-01", Cantidad: qty(1)}, "id_pool is required"},
		{"missing quantity", dto.AvailabilityRequest{PoolID: 1, Fechas: "2024-01-01"}, "cantidad is required"},
		{"negative quantity", dto.AvailabilityRequest{PoolID: 1, Fechas: "2024-01-01", Cantidad: qty(-5)}, "cantidad must be greater than 0"},
		{"zero quantity", dto.AvailabilityRequest{PoolID: 1, Fechas: "2024-01-01", Cantidad: qty(0)}, "cantidad must be greater than 0"},
		{"bad date", dto.AvailabilityRequest{PoolID: 1, Fechas: "2024-01-01,01/02/2024", Cantidad: qty(1)}, "fechas contains invalid date"},
		{"blank dates", dto.AvailabilityRequest{PoolID: 1, Fechas: " , ", Cantidad: qty(1)}, "fechas must contain at least one date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &engineSpy{}
			svc := NewSchedulingService(engine, nil, nil)

			_, err := svc.Availability(context.Background(), tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Contains(t, appErrors.FromError(err).Message, tc.message)
			assert.Zero(t, engine.calls)
		})
	}
}

func TestSchedulingServiceScheduleDelegates(t *testing.T) {
	engine := &engineSpy{result: &models.ScheduleResult{Categories: []int64{5}}}
	svc := NewSchedulingService(engine, nil, nil)

	result, err := svc.Schedule(context.Background(), dto.ScheduleRequest{
		Fecha: "2024-01-01", Periodo: "3", Cantidad: qty(100), PoolID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, result.Categories)
	assert.Equal(t, ScheduleInput{Date: "2024-01-01", Period: "3", Quantity: 100, PoolID: 10}, engine.schedule)
}

func TestSchedulingServiceScheduleValidation(t *testing.T) {
	cases := []struct {
		name     string
		req      dto.ScheduleRequest
		messages []string
	}{
		{
			"bad date and missing period",
			dto.ScheduleRequest{Fecha: "2024/01/01", Cantidad: qty(1), PoolID: 10},
			[]string{"fecha must be a date formatted YYYY-MM-DD", "periodo is required"},
		},
		{
			"zero quantity",
			dto.ScheduleRequest{Fecha: "2024-01-01", Periodo: "3", Cantidad: qty(0), PoolID: 10},
			[]string{"cantidad must be greater than 0"},
		},
		{
			"missing quantity",
			dto.ScheduleRequest{Fecha: "2024-01-01", Periodo: "3", PoolID: 10},
			[]string{"cantidad is required"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &engineSpy{}
			svc := NewSchedulingService(engine, nil, nil)

			_, err := svc.Schedule(context.Background(), tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			message := appErrors.FromError(err).Message
			for _, m := range tc.messages {
				assert.Contains(t, message, m)
			}
			assert.Zero(t, engine.calls)
		})
	}
}

func TestSchedulingServiceScheduleForwardsEngineError(t *testing.T) {
	engine := &engineSpy{err: appErrors.Clone(appErrors.ErrCapacityExhausted, "")}
	svc := NewSchedulingService(engine, nil, nil)

	_, err := svc.Schedule(context.Background(), dto.ScheduleRequest{Fecha: "2024-01-01", Periodo: "3", Cantidad: qty(50), PoolID: 10})
	assert.Same(t, engine.err, err)
}

func TestSchedulingServiceCapacityTable(t *testing.T) {
	engine := &engineSpy{rows: []models.CapacityRow{{CategoryID: 5}}}
	svc := NewSchedulingService(engine, nil, nil)

	rows, err := svc.CapacityTable(context.Background(), dto.CapacityTableQuery{PoolID: 10, Periodo: "AM"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int64(10), engine.poolID)
	assert.Equal(t, "AM", engine.period)

	_, err = svc.CapacityTable(context.Background(), dto.CapacityTableQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErrors.FromError(err).Message, "poolId is required")
}

func TestSchedulingServiceInvalidateCapacityTable(t *testing.T) {
	engine := &engineSpy{}
	svc := NewSchedulingService(engine, nil, nil)

	require.NoError(t, svc.InvalidateCapacityTable(context.Background(), dto.CapacityTableQuery{PoolID: 10}))
	assert.Equal(t, int64(10), engine.poolID)

	engine = &engineSpy{}
	svc = NewSchedulingService(engine, nil, nil)
	err := svc.InvalidateCapacityTable(context.Background(), dto.CapacityTableQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, engine.calls)
}

func TestDecodeJSONIsStrict(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", "  ", "request body is required"},
		{"unknown field", `{"id_pool":1,"extra":true}`, `unknown field "extra"`},
		{"wrong type", `{"id_pool":"ten"}`, "id_pool must be of type int64"},
		{"malformed", `{"id_pool":`, "malformed JSON body"},
		{"trailing", `{"id_pool":1}{"id_pool":2}`, "single JSON object"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req dto.AvailabilityRequest
			err := DecodeJSON(strings.NewReader(tc.body), &req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Contains(t, appErrors.FromError(err).Message, tc.message)
		})
	}
}

func TestDecodeJSONAcceptsValidBody(t *testing.T) {
	var req dto.AvailabilityRequest
	err := DecodeJSON(strings.NewReader(`{"id_pool":10,"fechas":"2024-01-01","cantidad":0}`), &req)
	require.NoError(t, err)
	assert.Equal(t, int64(10), req.PoolID)
	require.NotNil(t, req.Cantidad)
	assert.Equal(t, 0, *req.Cantidad)
}
