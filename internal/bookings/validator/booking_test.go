package validator

import (
	"io"
	"strings"
	"testing"

	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	return NewBookingValidator(log)
}

func TestValidateCreate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		create  *model.BookingCreate
		wantErr string
	}{
		{
			name: "valid booking",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentName: "Dana",
				StudentRoom: "204",
				Duration:    45,
			},
		},
		{
			name: "duration may be omitted",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentName: "Dana",
				StudentRoom: "204",
			},
		},
		{
			name: "missing machine id",
			create: &model.BookingCreate{
				StudentName: "Dana",
				StudentRoom: "204",
			},
			wantErr: "MachineID is required",
		},
		{
			name: "missing student name",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentRoom: "204",
			},
			wantErr: "StudentName is required",
		},
		{
			name: "room too long",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentName: "Dana",
				StudentRoom: strings.Repeat("9", 21),
			},
			wantErr: "StudentRoom must be at most 20",
		},
		{
			name: "long duration is accepted",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentName: "Dana",
				StudentRoom: "204",
				Duration:    1440,
			},
		},
		{
			name: "negative duration",
			create: &model.BookingCreate{
				MachineID:   "machine-1",
				StudentName: "Dana",
				StudentRoom: "204",
				Duration:    -5,
			},
			wantErr: "Duration must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.create)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

