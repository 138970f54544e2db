package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "github.com/pawhaven/bookingsync/internal"
	"github.com/pawhaven/bookingsync/internal/validator"
)

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		SitterID:     "12",
		SitterName:   "Jamie",
		PetOwnerID:   "7",
		PetOwnerName: "Alex",
		Date:         "2025-10-08",
		StartTime:    "09:00",
		EndTime:      "12:00",
		HourlyRate:   25,
		PetName:      "Biscuit",
		PetType:      "Dog",
	}
}

func TestValidateBookingRequest(t *testing.T) {
	v := validator.NewCustomValidator()

	tests := []struct {
		name    string
		mutate  func(*models.BookingRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *models.BookingRequest) {}},
		{name: "twelve hour clock accepted", mutate: func(r *models.BookingRequest) {
			r.StartTime = "9:00 AM"
			r.EndTime = "5:00 PM"
		}},
		{name: "missing sitter", mutate: func(r *models.BookingRequest) { r.SitterID = "" }, wantErr: true},
		{name: "garbage date", mutate: func(r *models.BookingRequest) { r.Date = "next tuesday" }, wantErr: true},
		{name: "garbage clock", mutate: func(r *models.BookingRequest) { r.StartTime = "morning" }, wantErr: true},
		{name: "negative rate", mutate: func(r *models.BookingRequest) { r.HourlyRate = -5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
