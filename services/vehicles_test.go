package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/models"
	"parkdesk/utils"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func registerVehicle(t *testing.T, f *fixture, in VehicleInput) *models.VehicleResponse {
	t.Helper()
	if in.Name == "" {
		in.Name = "Ahmad"
	}
	if in.Phone == "" {
		in.Phone = "0700000000"
	}
	v, err := f.svc.RegisterVehicle(context.Background(), in, "admin@example.com")
	require.NoError(t, err)
	return v
}

func TestRegisterVehicle(t *testing.T) {
	f := newFixture(t)

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "kbl 1", RegisterDate: day(2024, 1, 31), Price: 100})
	assert.Equal(t, "monthly", v.PlanType)
	assert.Equal(t, day(2024, 3, 2), v.ExpiresAt)
	assert.True(t, v.Expired)
	assert.Equal(t, billing.StatusUnpaid, v.Payment.Status)

	weekly := registerVehicle(t, f, VehicleInput{VehicleNumber: "kbl 2", RegisterDate: day(2024, 3, 1), PlanType: "Weekly", Price: 30})
	assert.Equal(t, "weekly", weekly.PlanType)
	assert.Equal(t, day(2024, 3, 8), weekly.ExpiresAt)
	assert.False(t, weekly.Expired)

	_, err := f.svc.RegisterVehicle(context.Background(), VehicleInput{Name: "x", VehicleNumber: "y", Phone: "z", RegisterDate: day(2024, 3, 1), Price: -1}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.RegisterVehicle(context.Background(), VehicleInput{Name: "x", VehicleNumber: "y", RegisterDate: day(2024, 3, 1)}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)
}

func TestUpdateVehicle_RecomputesExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})

	updated, err := f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{PlanType: ptr("bi-weekly")}, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bi-weekly", updated.PlanType)
	assert.True(t, updated.ExpiresAt.Equal(day(2024, 3, 15)))

	reg := day(2024, 3, 4)
	updated, err = f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{RegisterDate: &reg, Notes: ptr(" corner spot ")}, "")
	require.NoError(t, err)
	assert.True(t, updated.ExpiresAt.Equal(day(2024, 3, 18)))
	assert.Equal(t, "corner spot", updated.Notes)

	_, err = f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{Name: ptr(" ")}, "")
	assert.ErrorIs(t, err, billing.ErrValidation)
}

func TestRegisterVehicle_ExpiryOnDeploymentCalendar(t *testing.T) {
	kabul := time.FixedZone("AFT", 4*3600+1800)
	f := newFixtureIn(t, kabul)
	ctx := context.Background()

	// 20:00 UTC on Feb 29 is March 1, 00:30 in Kabul.
	reg := time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC)
	want := time.Date(2024, 4, 1, 0, 30, 0, 0, kabul)

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "KBL 7", RegisterDate: reg, Price: 100})
	assert.True(t, want.Equal(v.ExpiresAt), "expires at %s", v.ExpiresAt)

	updated, err := f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{RegisterDate: &reg, PlanType: ptr("monthly")}, "")
	require.NoError(t, err)
	assert.True(t, want.Equal(updated.ExpiresAt), "expires at %s", updated.ExpiresAt)
}

func TestUpdateVehicle_UnknownPlanWarns(t *testing.T) {
	f := newFixture(t)

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})
	f.hook.Reset()

	updated, err := f.svc.UpdateVehicle(context.Background(), v.ID, VehiclePatch{PlanType: ptr("quarterly")}, "")
	require.NoError(t, err)
	assert.True(t, updated.ExpiresAt.Equal(day(2024, 4, 1)))

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["plan_type"] == billing.PlanType("quarterly") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestUpdateVehicle_PriceRederivesPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})
	_, err := f.svc.RecordPayment(ctx, billing.KindVehicle, v.ID, 100)
	require.NoError(t, err)

	updated, err := f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{Price: ptr(120.0)}, "")
	require.NoError(t, err)
	assert.False(t, updated.Paid)
	assert.Equal(t, billing.StatusPartial, updated.Payment.Status)
	assert.Equal(t, 20.0, updated.Payment.Remaining)

	updated, err = f.svc.UpdateVehicle(ctx, v.ID, VehiclePatch{Price: ptr(90.0)}, "")
	require.NoError(t, err)
	assert.True(t, updated.Paid)
}

func TestVehiclePayments_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})

	res, err := f.svc.RecordPayment(ctx, billing.KindVehicle, v.ID, 40)
	require.NoError(t, err)
	assert.False(t, res.Paid)

	res, err = f.svc.RecordPayment(ctx, billing.KindVehicle, v.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentResult{PaidAmount: 100, Paid: true}, res)

	res, err = f.svc.RecordPayment(ctx, billing.KindVehicle, v.ID, -500)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentResult{PaidAmount: 0, Paid: false}, res)
}

func TestRenewVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Registered 2024-02-20 weekly, so expired on 2024-02-27; now is 2024-03-05.
	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 2, 20), PlanType: "weekly", Price: 30})

	res, err := f.svc.RenewVehicle(ctx, v.ID, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, res.RegisterDate.Equal(day(2024, 2, 27)))
	assert.True(t, res.ExpiresAt.Equal(day(2024, 3, 5)))

	// The new period ended at midnight, so it is already due again.
	res, err = f.svc.RenewVehicle(ctx, v.ID, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, res.ExpiresAt.Equal(day(2024, 3, 12)))

	_, err = f.svc.RenewVehicle(ctx, v.ID, "admin@example.com")
	assert.ErrorIs(t, err, billing.ErrState)

	got, err := f.svc.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Renewals, 2)
	assert.True(t, got.Renewals[0].PreviousExpiry.Equal(day(2024, 2, 27)))
	assert.Equal(t, "admin@example.com", got.Renewals[0].RenewedBy)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RenewalsTotal.WithLabelValues("false")))
}

func TestRenewVehicleWithPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})
	_, err := f.svc.SetPayment(ctx, billing.KindVehicle, v.ID, 100)
	require.NoError(t, err)

	res, err := f.svc.RenewVehicleWithPayment(ctx, v.ID, 60, "")
	require.NoError(t, err)
	assert.True(t, res.RegisterDate.Equal(day(2024, 4, 1)))
	assert.True(t, res.ExpiresAt.Equal(day(2024, 5, 1)))
	assert.Equal(t, billing.PaymentResult{PaidAmount: 60, Paid: false}, res.PaymentResult)

	_, err = f.svc.RenewVehicleWithPayment(ctx, v.ID, 0, "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	_, err = f.svc.RenewVehicleWithPayment(ctx, "missing", 10, "")
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestListVehicles_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})
	registerVehicle(t, f, VehicleInput{VehicleNumber: "B-1", RegisterDate: day(2024, 1, 1), Price: 100})

	active, err := f.svc.ListVehicles(ctx, database.ListQuery{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, int64(1), active.Total)
	assert.False(t, active.Items[0].Expired)

	expired, err := f.svc.ListVehicles(ctx, database.ListQuery{Status: "expired"})
	require.NoError(t, err)
	require.Equal(t, int64(1), expired.Total)
	assert.True(t, expired.Items[0].Expired)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerVehicle(t, f, VehicleInput{VehicleNumber: "A-1", RegisterDate: day(2024, 3, 1), Price: 100})
	registerVehicle(t, f, VehicleInput{VehicleNumber: "A-2", RegisterDate: day(2024, 3, 4), Price: 80})
	registerVehicle(t, f, VehicleInput{VehicleNumber: "B-1", RegisterDate: day(2024, 3, 2), PlanType: "weekly", Price: 30})
	registerVehicle(t, f, VehicleInput{VehicleNumber: "C-1", RegisterDate: day(2024, 2, 28), Price: 100})
	_, err := f.svc.StartTimer(ctx, StartTimerInput{VehicleNumber: "T-1"}, "")
	require.NoError(t, err)

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 1), d.MonthStart)
	assert.Equal(t, []database.PlanStat{
		{PlanType: "monthly", Count: 2, Amount: 180},
		{PlanType: "weekly", Count: 1, Amount: 30},
	}, d.Plans)
	assert.Equal(t, int64(3), d.GrandCount)
	assert.Equal(t, 210.0, d.GrandTotal)
	assert.Equal(t, int64(1), d.ActiveTimers)
	assert.Len(t, d.Recent, 4)
}

func TestLoginAndEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "pw", models.RoleSuperAdmin))
	// Second call is a no-op.
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "other", models.RoleAdmin))

	user, err := f.svc.Login(ctx, "ROOT@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, user.SessionRole())

	_, err = f.svc.Login(ctx, "root@example.com", "other")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, billing.ErrValidation)

	hash, err := utils.HashPassword("pw2")
	require.NoError(t, err)
	require.NoError(t, f.store.CreateUser(ctx, &models.User{Email: "desk@example.com", Password: hash, Role: "clerk"}))
	user, err = f.svc.Login(ctx, "desk@example.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.SessionRole())

	// Seeding is skipped without credentials.
	assert.NoError(t, f.svc.EnsureAdmin(ctx, "", "", ""))
}

func TestEnsureAdmin_LosesCreateRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Insert the account between the lookup and the create, as a concurrent seeder would.
	var raced bool
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:seed_race", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		raced = true
		require.NoError(t, f.store.CreateUser(ctx, &models.User{Email: "root@example.com", Password: "x", Role: models.RoleAdmin}))
	}))

	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@example.com", "pw", models.RoleSuperAdmin))
	assert.True(t, raced)
	for _, e := range f.hook.AllEntries() {
		assert.NotEqual(t, "seed admin created", e.Message)
	}

	user, err := f.store.FindUserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}
