package model

import (
	"time"
)

// Machine statuses as they appear on the wire and in storage.
const (
	MachineAvailable  = "available"
	MachineInUse      = "in_use"
	MachineOutOfOrder = "out_of_order"
)

// Machine is a single washer/dryer unit. CurrentUser and TimeRemaining are
// set together while the machine is in use and cleared together otherwise.
type Machine struct {
	ID            string    `json:"id" bson:"_id"`
	MachineNumber int       `json:"machine_number" bson:"machine_number"`
	Status        string    `json:"status" bson:"status"`
	CurrentUser   *string   `json:"current_user" bson:"current_user,omitempty"`
	TimeRemaining *int      `json:"time_remaining" bson:"time_remaining,omitempty"`
	Floor         int       `json:"floor" bson:"floor"`
	Location      string    `json:"location" bson:"location"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// MachineCreate accepts any integers for machine_number and floor;
// creation always succeeds for a well-formed payload with a known status.
type MachineCreate struct {
	MachineNumber int    `json:"machine_number"`
	Status        string `json:"status" validate:"omitempty,oneof=available in_use out_of_order"`
	Floor         int    `json:"floor"`
	Location      string `json:"location" validate:"required"`
}

// MachineUpdate carries a partial update; nil fields are left untouched.
type MachineUpdate struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=available in_use out_of_order"`
	CurrentUser   *string `json:"current_user,omitempty" validate:"omitempty,min=1,max=100"`
	TimeRemaining *int    `json:"time_remaining,omitempty" validate:"omitempty,min=0"`
}

// InUse reports whether the machine is currently held by a booking.
func (m *Machine) InUse() bool {
	return m.Status == MachineInUse
}
