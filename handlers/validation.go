package handlers

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"parkdesk/billing"
	"parkdesk/services"
)

const maxVehicleNumber = 32

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("vehicle_number", validVehicleNumber)
	})
}

// validVehicleNumber accepts a plate that is non-empty and fits the column once normalized.
func validVehicleNumber(fl validator.FieldLevel) bool {
	n := services.NormalizeVehicleNumber(fl.Field().String())
	return n != "" && len(n) <= maxVehicleNumber
}

// Amount is a money value sent either as a JSON number or as a numeric string.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := billing.ParseAmount(s)
		if err != nil {
			return err
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return billing.Validation("invalid amount")
	}
	*a = Amount(v)
	return nil
}

func (a *Amount) ptr() *float64 {
	if a == nil {
		return nil
	}
	v := float64(*a)
	return &v
}
