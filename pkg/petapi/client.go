package petapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	models "github.com/pawhaven/bookingsync/internal"
)

// Client talks to the pet-sitting backend's booking endpoints. It is the
// only component allowed to perform authoritative state transitions.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	token      string
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Option func(*Client)

var (
	ErrNotFound           = errors.New("booking not found on server")
	ErrUnauthorized       = errors.New("booking api rejected credentials")
	ErrTransitionRejected = errors.New("booking transition rejected by server")
	ErrBadStatusCode      = errors.New("invalid status code from booking api")
)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer credential attached to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.pawhaven.app",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type createPayload struct {
	SitterID    string  `json:"sitter_id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	PetName     string  `json:"pet_name"`
	PetType     string  `json:"pet_type"`
	ServiceType string  `json:"service_type"`
	Duration    float64 `json:"duration"`
	RatePerHour float64 `json:"rate_per_hour"`
	Description string  `json:"description"`
	IsWeekly    bool    `json:"is_weekly"`
}

type bookingResponse struct {
	Success bool        `json:"success"`
	Booking *apiBooking `json:"booking"`
	Message string      `json:"message"`
}

type listResponse struct {
	Success  bool         `json:"success"`
	Bookings []apiBooking `json:"bookings"`
}

// CreateBooking posts a new booking request. The returned record carries the
// server-assigned id; participant names the server does not echo are filled
// from the request.
func (c *Client) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	date, err := models.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := models.NormalizeClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := models.NormalizeClock(req.EndTime)
	if err != nil {
		return nil, err
	}

	window := models.Booking{Date: date, StartTime: start, EndTime: end}
	hours, err := window.DurationHours()
	if err != nil {
		return nil, err
	}

	description := req.SpecialInstructions
	if description == "" {
		description = "Pet sitting service requested"
	}
	payload := createPayload{
		SitterID:    req.SitterID,
		Date:        date,
		Time:        start,
		StartTime:   start,
		EndTime:     end,
		PetName:     req.PetName,
		PetType:     req.PetType,
		ServiceType: "Pet Sitting",
		Duration:    hours,
		RatePerHour: req.HourlyRate,
		Description: description,
	}

	var resp bookingResponse
	if err := c.post(ctx, c.baseURL+"/api/bookings", payload, &resp); err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	booking := models.Booking{
		SitterID:     req.SitterID,
		SitterName:   req.SitterName,
		PetOwnerID:   req.PetOwnerID,
		PetOwnerName: req.PetOwnerName,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		HourlyRate:   req.HourlyRate,
		Status:       models.StatusPending,
		PetName:      req.PetName,
		PetType:      req.PetType,
		Duration:     hours,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if resp.Booking != nil {
		mergeServerBooking(&booking, resp.Booking)
	}
	if booking.ID == "" {
		return nil, fmt.Errorf("create response missing booking id: %w", ErrBadStatusCode)
	}
	return &booking, nil
}

// ListBookings fetches the caller's bookings and normalizes the assorted
// date/time shapes the backend emits into the canonical record.
func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/api/bookings/", nil)
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err := c.send(req, &resp); err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(resp.Bookings))
	for i := range resp.Bookings {
		bookings = append(bookings, resp.Bookings[i].toModel())
	}
	return bookings, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	return c.transition(ctx, id, "confirm", nil)
}

func (c *Client) CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	var body any
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return c.transition(ctx, id, "cancel", body)
}

func (c *Client) StartSession(ctx context.Context, id string) (*models.Booking, error) {
	return c.transition(ctx, id, "start", nil)
}

func (c *Client) CompleteSession(ctx context.Context, id string) (*models.Booking, error) {
	return c.transition(ctx, id, "complete", nil)
}

// AutoCompleteSessions asks the backend to finish any active sessions whose
// end time has passed.
func (c *Client) AutoCompleteSessions(ctx context.Context) (models.SweepResult, error) {
	var result models.SweepResult
	if err := c.post(ctx, c.baseURL+"/api/bookings/auto-complete", nil, &result); err != nil {
		return models.SweepResult{}, fmt.Errorf("auto-completing sessions: %w", err)
	}
	return result, nil
}

// transition POSTs /api/bookings/{id}/{action}. The returned booking is nil
// when the backend acknowledges without echoing the record.
func (c *Client) transition(ctx context.Context, id, action string, body any) (*models.Booking, error) {
	u := fmt.Sprintf("%s/api/bookings/%s/%s", c.baseURL, id, action)
	req, err := c.newRequest(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	// Repeating a transition after a timeout must be provably safe.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var resp bookingResponse
	if err := c.send(req, &resp); err != nil {
		return nil, fmt.Errorf("%s booking %s: %w", action, id, err)
	}
	if resp.Booking == nil {
		return nil, nil
	}
	booking := resp.Booking.toModel()
	return &booking, nil
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(jsonBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return ErrTransitionRejected
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("status %d: %w", resp.StatusCode, ErrBadStatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func mergeServerBooking(dst *models.Booking, src *apiBooking) {
	server := src.toModel()
	dst.ID = server.ID
	if server.Status != "" {
		dst.Status = server.Status
	}
	if server.TotalAmount > 0 {
		dst.TotalAmount = server.TotalAmount
	}
	if !server.CreatedAt.IsZero() {
		dst.CreatedAt = server.CreatedAt
		dst.UpdatedAt = server.CreatedAt
	}
}
