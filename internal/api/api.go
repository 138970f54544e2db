package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	models "github.com/pawhaven/bookingsync/internal"
	"github.com/pawhaven/bookingsync/internal/ports"
	"github.com/pawhaven/bookingsync/internal/utils"
	"github.com/pawhaven/bookingsync/internal/validator"
	"github.com/pawhaven/bookingsync/pkg/petapi"
)

// BookingsHandler serves the mirror on GET and creates bookings on POST.
func BookingsHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(service, w, r)
		case http.MethodPost:
			create(service, w, r)
		}
	}
}

func list(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sitterID := q.Get("sitter_id")
	ownerID := q.Get("owner_id")
	scope := q.Get("scope")

	mirror := service.Mirror()
	var bookings []models.Booking
	switch {
	case scope != "" && sitterID == "":
		ae := utils.NewBadRequest("scope requires sitter_id")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	case scope == "upcoming":
		bookings = mirror.UpcomingForSitter(sitterID, time.Now())
	case scope == "active":
		bookings = mirror.ActiveForSitter(sitterID)
	case scope == "pending":
		bookings = mirror.PendingForSitter(sitterID)
	case scope == "completed":
		bookings = mirror.CompletedForSitter(sitterID)
	case scope != "":
		ae := utils.NewBadRequest("unknown scope " + scope)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	case sitterID != "":
		bookings = mirror.ForSitter(sitterID)
	case ownerID != "":
		bookings = mirror.ForOwner(ownerID)
	default:
		bookings = mirror.All()
	}

	utils.RenderResponse(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func create(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	var bookingRequest models.BookingRequest
	if err := utils.JsonDecodeBody(r, &bookingRequest); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	v := validator.NewCustomValidator()
	if err := v.Validate(bookingRequest); err != nil {
		ae := utils.NewBadRequest(err.Error())
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	booking, err := service.CreateBooking(r.Context(), &bookingRequest)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusCreated, booking)
}

// BookingActionHandler handles POST /v1/bookings/{id}/{action} where action
// is one of confirm, start, complete, cancel.
func BookingActionHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseActionPath(r.URL.Path)
		if !ok {
			ae := utils.NewNotFound("unknown booking route")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}

		var booking *models.Booking
		var err error
		switch action {
		case "confirm":
			booking, err = service.ConfirmBooking(r.Context(), id)
		case "start":
			booking, err = service.StartSession(r.Context(), id)
		case "complete":
			booking, err = service.CompleteSession(r.Context(), id)
		case "cancel":
			var body struct {
				Reason string `json:"reason"`
			}
			utils.JsonDecodeBody(r, &body)
			booking, err = service.CancelBooking(r.Context(), id, body.Reason)
		default:
			ae := utils.NewNotFound("unknown booking action " + action)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, booking)
	}
}

func parseActionPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	// expects v1/bookings/{id}/{action}
	if len(parts) != 4 || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// SweepHandler triggers one auto-complete sweep on demand.
func SweepHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := service.AutoCompleteSessions(r.Context())
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, result)
	}
}

// EarningsHandler serves the sitter payout rollup from the mirror.
func EarningsHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sitterID := r.URL.Query().Get("sitter_id")
		if sitterID == "" {
			ae := utils.NewBadRequest("sitter_id is required")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, service.EarningsForSitter(sitterID))
	}
}

// RefreshHandler reloads the mirror from the backend.
func RefreshHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := service.Refresh(r.Context())
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, map[string]interface{}{
			"bookings": bookings,
			"count":    len(bookings),
		})
	}
}

func getApiError(err error) utils.ApiError {
	ae := utils.ApiError{Msg: err.Error()}
	switch {
	case errors.Is(err, models.ErrBookingNotFound):
		ae.StatusCode = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrSessionNotDue),
		errors.Is(err, models.ErrSessionOngoing),
		errors.Is(err, petapi.ErrTransitionRejected):
		ae.StatusCode = http.StatusConflict
	case errors.Is(err, models.ErrMalformedSchedule):
		ae.StatusCode = http.StatusUnprocessableEntity
	case errors.Is(err, petapi.ErrNotFound):
		ae.StatusCode = http.StatusNotFound
	case errors.Is(err, petapi.ErrUnauthorized),
		errors.Is(err, petapi.ErrBadStatusCode):
		ae.StatusCode = http.StatusBadGateway
	default:
		ae.StatusCode = http.StatusInternalServerError
	}
	return ae
}
