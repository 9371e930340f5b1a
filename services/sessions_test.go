package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/billing"
	"parkdesk/database"
)

func TestCreateHourlySession_Manual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	end := start.Add(75 * time.Minute)
	session, err := f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "a-1", StartTime: start, EndTime: &end}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A-1", session.VehicleNumber)
	assert.Equal(t, 10.0, session.TotalPrice)
	assert.Equal(t, billing.StatusUnpaid, session.Payment.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionsSettled.WithLabelValues("manual")))

	// Without an end time the session closes now.
	f.clock.Advance(30 * time.Minute)
	open, err := f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "B-2", StartTime: start, Paid: true}, "")
	require.NoError(t, err)
	assert.Equal(t, 30, open.ElapsedMinutes)
	assert.True(t, open.Paid)

	before := start.Add(-time.Minute)
	_, err = f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "C-3", StartTime: start, EndTime: &before}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "C-3"}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)
}

func TestHourlyPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	end := start.Add(3 * time.Hour)
	session, err := f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "A-1", StartTime: start, EndTime: &end}, "")
	require.NoError(t, err)
	require.Equal(t, 20.0, session.TotalPrice)

	res, err := f.svc.RecordPayment(ctx, billing.KindHourly, session.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentResult{PaidAmount: 15, Paid: false}, res)

	got, err := f.svc.GetHourlySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPartial, got.Payment.Status)
	assert.Equal(t, 5.0, got.Payment.Remaining)

	res, err = f.svc.SetPayment(ctx, billing.KindHourly, session.ID, 20)
	require.NoError(t, err)
	assert.True(t, res.Paid)

	total, err := f.svc.HourlyPaidTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.0, total)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("hourly", "delta")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("hourly", "absolute")))
}

func TestUpdateHourlySession_RederivesPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	end := start.Add(time.Hour)
	session, err := f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "A-1", StartTime: start, EndTime: &end, Paid: true}, "")
	require.NoError(t, err)
	require.True(t, session.Paid)

	updated, err := f.svc.UpdateHourlySession(ctx, session.ID, HourlyPatch{TotalPrice: ptr(8.0), BillableHours: ptr(2)}, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.TotalPrice)
	assert.Equal(t, 2, updated.BillableHours)
	assert.Equal(t, 5.0, updated.PaidAmount)
	assert.False(t, updated.Paid)
	assert.Equal(t, billing.StatusPartial, updated.Payment.Status)
	assert.False(t, updated.Payment.Diverged)

	_, err = f.svc.UpdateHourlySession(ctx, session.ID, HourlyPatch{}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.UpdateHourlySession(ctx, session.ID, HourlyPatch{BillableHours: ptr(0)}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.UpdateHourlySession(ctx, "missing", HourlyPatch{TotalPrice: ptr(1.0)}, "")
	assert.ErrorIs(t, err, billing.ErrNotFound)

	require.NoError(t, f.svc.DeleteHourlySession(ctx, session.ID, ""))
	_, err = f.svc.GetHourlySession(ctx, session.ID)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestListHourlySessions_UsesConfiguredPageSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		end := start.Add(time.Hour)
		_, err := f.svc.CreateHourlySession(ctx, HourlyInput{VehicleNumber: "A-1", StartTime: start, EndTime: &end}, "")
		require.NoError(t, err)
	}

	page, err := f.svc.ListHourlySessions(ctx, database.ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 2, page.TotalPages)
}

func TestNightSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	night, err := f.svc.CreateNightSession(ctx, NightInput{VehicleNumber: "n-1"}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 30.0, night.Price)
	assert.Equal(t, start, night.Timestamp)
	assert.False(t, night.Paid)

	custom, err := f.svc.CreateNightSession(ctx, NightInput{VehicleNumber: "n-2", Price: ptr(45.0), Paid: true}, "")
	require.NoError(t, err)
	assert.True(t, custom.Paid)
	assert.Equal(t, 45.0, custom.PaidAmount)

	_, err = f.svc.CreateNightSession(ctx, NightInput{VehicleNumber: "n-3", Price: ptr(-1.0)}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	res, err := f.svc.RecordPayment(ctx, billing.KindNight, night.ID, 30)
	require.NoError(t, err)
	assert.True(t, res.Paid)

	// Raising the price after payment reopens the balance.
	ts := start.Add(-2 * time.Hour)
	updated, err := f.svc.UpdateNightSession(ctx, night.ID, NightPatch{Price: ptr(40.0), Timestamp: &ts}, "")
	require.NoError(t, err)
	assert.False(t, updated.Paid)
	assert.Equal(t, 10.0, updated.Payment.Remaining)
	assert.True(t, updated.Timestamp.Equal(ts))

	page, err := f.svc.ListNightSessions(ctx, database.ListQuery{Filter: "unpaid"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	paid, err := f.svc.NightPaidTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75.0, paid)

	require.NoError(t, f.svc.DeleteNightSession(ctx, night.ID, ""))
	assert.ErrorIs(t, f.svc.DeleteNightSession(ctx, night.ID, ""), billing.ErrNotFound)
}
