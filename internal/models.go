package models

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrSessionNotDue     = errors.New("session is not scheduled to start yet")
	ErrSessionOngoing    = errors.New("session still ongoing")
	ErrMalformedSchedule = errors.New("malformed booking schedule")
)

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether s may move to next. Transitions run
// monotonically along pending -> confirmed -> active -> completed, with
// cancelled reachable from pending or confirmed only.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusActive || next == StatusCancelled
	case StatusActive:
		return next == StatusCompleted
	default:
		return false
	}
}

// Booking is the core scheduling entity. Date and clock fields hold
// normalized wire strings ("2006-01-02" and "15:04"); StartAt/EndAt compose
// them into real instants.
type Booking struct {
	ID                  string        `json:"id"`
	SitterID            string        `json:"sitter_id"`
	SitterName          string        `json:"sitter_name"`
	PetOwnerID          string        `json:"pet_owner_id"`
	PetOwnerName        string        `json:"pet_owner_name"`
	Date                string        `json:"date"`
	StartTime           string        `json:"start_time"`
	EndTime             string        `json:"end_time"`
	HourlyRate          float64       `json:"hourly_rate"`
	Status              BookingStatus `json:"status"`
	PetName             string        `json:"pet_name,omitempty"`
	PetType             string        `json:"pet_type,omitempty"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	TotalAmount         float64       `json:"total_amount,omitempty"`
	Duration            float64       `json:"duration,omitempty"`
	IsWeekly            bool          `json:"is_weekly,omitempty"`
	StartDate           string        `json:"start_date,omitempty"`
	EndDate             string        `json:"end_date,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Earnings is the amount a booking contributes to sitter payouts: the
// server-computed total when present, otherwise duration times rate.
func (b *Booking) Earnings() float64 {
	if b.TotalAmount > 0 {
		return b.TotalAmount
	}
	hours, err := b.DurationHours()
	if err != nil {
		hours = b.Duration
	}
	return hours * b.HourlyRate
}

type BookingRequest struct {
	SitterID            string  `json:"sitter_id" validate:"required"`
	SitterName          string  `json:"sitter_name"`
	PetOwnerID          string  `json:"pet_owner_id" validate:"required"`
	PetOwnerName        string  `json:"pet_owner_name"`
	Date                string  `json:"date" validate:"required,valid_date"`
	StartTime           string  `json:"start_time" validate:"required,valid_clock"`
	EndTime             string  `json:"end_time" validate:"required,valid_clock"`
	HourlyRate          float64 `json:"hourly_rate" validate:"gte=0"`
	PetName             string  `json:"pet_name"`
	PetType             string  `json:"pet_type"`
	SpecialInstructions string  `json:"special_instructions"`
}

type SitterEarnings struct {
	ThisWeek      float64 `json:"this_week"`
	ThisMonth     float64 `json:"this_month"`
	Total         float64 `json:"total"`
	CompletedJobs int     `json:"completed_jobs"`
}

type SweepResult struct {
	Success        bool `json:"success"`
	CompletedCount int  `json:"completed_count"`
}
