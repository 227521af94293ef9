package model

import (
	"time"
)

// Booking statuses. Cancelled is accepted everywhere a status is decoded
// but no endpoint currently produces it.
const (
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking couples a student to a machine for a fixed duration starting at
// creation time. MachineID is a weak reference; the booking does not own
// the machine document.
type Booking struct {
	ID          string    `json:"id" bson:"_id"`
	MachineID   string    `json:"machine_id" bson:"machine_id"`
	StudentName string    `json:"student_name" bson:"student_name"`
	StudentRoom string    `json:"student_room" bson:"student_room"`
	StartTime   time.Time `json:"start_time" bson:"start_time"`
	Duration    int       `json:"duration" bson:"duration"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type BookingCreate struct {
	MachineID   string `json:"machine_id" validate:"required"`
	StudentName string `json:"student_name" validate:"required,min=1,max=100"`
	StudentRoom string `json:"student_room" validate:"required,min=1,max=20"`
	Duration    int    `json:"duration" validate:"omitempty,min=1"`
}
