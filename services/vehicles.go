package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/models"
)

// VehicleInput registers a subscription vehicle.
type VehicleInput struct {
	Name          string
	VehicleNumber string
	Phone         string
	RegisterDate  time.Time
	PlanType      string
	Price         float64
	Notes         string
}

// VehiclePatch is a super-admin edit. Nil fields are left alone.
type VehiclePatch struct {
	Name          *string
	VehicleNumber *string
	Phone         *string
	PlanType      *string
	RegisterDate  *time.Time
	Price         *float64
	Notes         *string
}

func (p VehiclePatch) empty() bool {
	return p.Name == nil && p.VehicleNumber == nil && p.Phone == nil && p.PlanType == nil &&
		p.RegisterDate == nil && p.Price == nil && p.Notes == nil
}

func (s *Service) RegisterVehicle(ctx context.Context, in VehicleInput, actor string) (*models.VehicleResponse, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	number := NormalizeVehicleNumber(in.VehicleNumber)
	if name == "" || number == "" || phone == "" || in.RegisterDate.IsZero() {
		return nil, billing.Validation("missing required fields")
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}

	plan := billing.ParsePlanType(in.PlanType)
	expiresAt, err := billing.ComputeExpiry(in.RegisterDate, plan, s.loc)
	if err != nil {
		return nil, err
	}
	price := billing.Round(in.Price)
	settled := billing.Settle(0, price)

	v := &models.Vehicle{
		Name:          name,
		VehicleNumber: number,
		Phone:         phone,
		PlanType:      string(plan),
		RegisterDate:  in.RegisterDate,
		ExpiresAt:     expiresAt,
		Price:         price,
		PaidAmount:    settled.PaidAmount,
		Paid:          settled.Paid,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedBy:     actor,
	}
	if err := s.store.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"vehicle_id":     v.ID,
		"vehicle_number": number,
		"plan_type":      plan,
		"expires_at":     expiresAt.Format(time.RFC3339),
		"created_by":     actor,
	}).Info("vehicle registered")
	if !plan.Known() {
		s.log.WithField("plan_type", plan).Warn("unrecognised plan type, expiry computed as monthly")
	}

	resp := v.ToResponse(s.clock.Now())
	return &resp, nil
}

// GetVehicle returns a vehicle with its renewal history.
func (s *Service) GetVehicle(ctx context.Context, id string) (*models.VehicleResponse, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := v.ToResponse(s.clock.Now())
	return &resp, nil
}

func (s *Service) ListVehicles(ctx context.Context, q database.ListQuery) (database.Page[models.VehicleResponse], error) {
	q = s.listQuery(q)
	page, err := s.store.ListVehicles(ctx, q)
	if err != nil {
		return database.Page[models.VehicleResponse]{}, err
	}
	return mapPage(page, func(v models.Vehicle) models.VehicleResponse { return v.ToResponse(q.Now) }), nil
}

// UpdateVehicle applies a super-admin edit. The expiry is recomputed whenever the register date
// or the plan changes, and a new price re-derives the paid flag.
func (s *Service) UpdateVehicle(ctx context.Context, id string, patch VehiclePatch, actor string) (*models.VehicleResponse, error) {
	if patch.empty() {
		return nil, billing.Validation("no valid fields to update")
	}
	current, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, billing.Validation("name cannot be empty")
		}
		fields["name"] = name
	}
	if patch.VehicleNumber != nil {
		number, err := requireVehicleNumber(*patch.VehicleNumber)
		if err != nil {
			return nil, err
		}
		fields["vehicle_number"] = number
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		if phone == "" {
			return nil, billing.Validation("phone cannot be empty")
		}
		fields["phone"] = phone
	}
	if patch.Notes != nil {
		fields["notes"] = strings.TrimSpace(*patch.Notes)
	}
	if patch.Price != nil {
		if err := checkPrice(*patch.Price); err != nil {
			return nil, err
		}
		fields["price"] = billing.Round(*patch.Price)
		fields["paid"] = billing.Settle(current.PaidAmount, *patch.Price).Paid
	}

	plan := billing.ParsePlanType(current.PlanType)
	registerDate := current.RegisterDate
	if patch.PlanType != nil {
		plan = billing.ParsePlanType(*patch.PlanType)
		fields["plan_type"] = string(plan)
	}
	if patch.RegisterDate != nil {
		registerDate = *patch.RegisterDate
		fields["register_date"] = registerDate
	}
	if patch.PlanType != nil || patch.RegisterDate != nil {
		expiresAt, err := billing.ComputeExpiry(registerDate, plan, s.loc)
		if err != nil {
			return nil, err
		}
		fields["expires_at"] = expiresAt
	}

	if err := s.store.UpdateVehicle(ctx, id, fields); err != nil {
		return nil, err
	}
	if patch.PlanType != nil && !plan.Known() {
		s.log.WithFields(logrus.Fields{"vehicle_id": id, "plan_type": plan}).Warn("unrecognised plan type, expiry computed as monthly")
	}
	s.log.WithFields(logrus.Fields{"vehicle_id": id, "updated_by": actor}).Info("vehicle updated")
	return s.GetVehicle(ctx, id)
}

func (s *Service) DeleteVehicle(ctx context.Context, id, actor string) error {
	if err := s.store.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"vehicle_id": id, "deleted_by": actor}).Info("vehicle deleted")
	return nil
}
