package petapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	models "github.com/pawhaven/bookingsync/internal"
)

// The backend is loose about scalar types: ids arrive as numbers or
// strings, rates as numbers or quoted decimals. looseID and looseNumber
// absorb both shapes.
type looseID string

func (v *looseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = looseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = looseID(n.String())
	return nil
}

type looseNumber float64

func (v *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*v = 0
			return nil
		}
		*v = looseNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = looseNumber(f)
	return nil
}

type apiParty struct {
	ID   looseID `json:"id"`
	Name string  `json:"name"`
}

type apiBooking struct {
	ID                  looseID     `json:"id"`
	PetSitter           *apiParty   `json:"pet_sitter"`
	PetOwner            *apiParty   `json:"pet_owner"`
	SitterID            looseID     `json:"sitter_id"`
	SitterName          string      `json:"sitter_name"`
	PetOwnerID          looseID     `json:"pet_owner_id"`
	PetOwnerName        string      `json:"pet_owner_name"`
	Date                string      `json:"date"`
	Time                string      `json:"time"`
	StartTime           string      `json:"start_time"`
	EndTime             string      `json:"end_time"`
	HourlyRate          looseNumber `json:"hourly_rate"`
	RatePerHour         looseNumber `json:"rate_per_hour"`
	TotalAmount         looseNumber `json:"total_amount"`
	Duration            looseNumber `json:"duration"`
	Status              string      `json:"status"`
	PetName             string      `json:"pet_name"`
	PetType             string      `json:"pet_type"`
	SpecialInstructions string      `json:"special_instructions"`
	Description         string      `json:"description"`
	IsWeekly            bool        `json:"is_weekly"`
	StartDate           string      `json:"start_date"`
	EndDate             string      `json:"end_date"`
	CreatedAt           string      `json:"created_at"`
	UpdatedAt           string      `json:"updated_at"`
}

const defaultDurationHours = 3

// toModel normalizes one wire record: nested participant refs win over the
// flat fields, clock strings are reduced to "15:04", and records that only
// carry a combined timestamp get a window derived from it plus the duration.
func (a *apiBooking) toModel() models.Booking {
	b := models.Booking{
		ID:                  string(a.ID),
		SitterID:            string(a.SitterID),
		SitterName:          a.SitterName,
		PetOwnerID:          string(a.PetOwnerID),
		PetOwnerName:        a.PetOwnerName,
		HourlyRate:          float64(a.HourlyRate),
		TotalAmount:         float64(a.TotalAmount),
		Duration:            float64(a.Duration),
		PetName:             a.PetName,
		PetType:             a.PetType,
		SpecialInstructions: a.SpecialInstructions,
		IsWeekly:            a.IsWeekly,
		StartDate:           a.StartDate,
		EndDate:             a.EndDate,
	}
	if a.PetSitter != nil {
		b.SitterID = string(a.PetSitter.ID)
		b.SitterName = a.PetSitter.Name
	}
	if a.PetOwner != nil {
		b.PetOwnerID = string(a.PetOwner.ID)
		b.PetOwnerName = a.PetOwner.Name
	}
	if b.HourlyRate == 0 {
		b.HourlyRate = float64(a.RatePerHour)
	}
	if b.SpecialInstructions == "" {
		b.SpecialInstructions = a.Description
	}

	b.Status = models.BookingStatus(strings.ToLower(strings.TrimSpace(a.Status)))
	if b.Status == "" {
		b.Status = models.StatusPending
	}

	if date, err := models.NormalizeDate(a.Date); err == nil {
		b.Date = date
	} else {
		b.Date = a.Date
	}

	b.StartTime, b.EndTime = a.timeWindow()
	if b.Duration == 0 {
		if hours, err := b.DurationHours(); err == nil {
			b.Duration = hours
		}
	}

	b.CreatedAt = parseTimestamp(a.CreatedAt)
	b.UpdatedAt = parseTimestamp(a.UpdatedAt)
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return b
}

func (a *apiBooking) timeWindow() (start, end string) {
	if a.StartTime != "" && a.EndTime != "" {
		if s, err := models.NormalizeClock(a.StartTime); err == nil {
			start = s
		} else {
			start = a.StartTime
		}
		if e, err := models.NormalizeClock(a.EndTime); err == nil {
			end = e
		} else {
			end = a.EndTime
		}
		return start, end
	}

	// Older records carry a single "time" timestamp; derive the window from
	// it and the reported duration.
	if a.Time != "" {
		if at, err := parseCombined(a.Time); err == nil {
			hours := float64(a.Duration)
			if hours <= 0 {
				hours = defaultDurationHours
			}
			return at.Format(models.ClockLayout),
				at.Add(time.Duration(hours * float64(time.Hour))).Format(models.ClockLayout)
		}
	}
	return "09:00", "17:00"
}

var combinedLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"15:04:05",
	"15:04",
}

func parseCombined(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range combinedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
