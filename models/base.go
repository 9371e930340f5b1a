package models

import "github.com/google/uuid"

// Admin roles. super-admin passes every role gate.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// assignID gives a record a uuid primary key unless the caller already set one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels lists every table AutoMigrate manages.
func AllModels() []any {
	return []any{
		&User{},
		&ActiveVehicle{},
		&HourlySession{},
		&NightSession{},
		&Vehicle{},
		&Renewal{},
	}
}
