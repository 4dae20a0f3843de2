package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ryokou-app/backend/internal/domain"
	"github.com/ryokou-app/backend/internal/middleware"
	"github.com/ryokou-app/backend/internal/service"
)

// createTrip handles POST /trips.
// The authenticated caller becomes the trip's first member.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	trip, err := s.trips.Create(r.Context(), email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// listTrips handles GET /trips.
// Returns the trips the authenticated caller is a member of.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	trips, err := s.trips.ListByMember(r.Context(), email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// getTrip handles GET /trips/{tripID}.
// Opening a trip with unresolved flight legs kicks off a background
// flight-time refresh; the times show up on a later read.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if s.flights.NeedsRefresh(trip) {
		s.flights.RefreshAsync(trip.ID)
	}
	writeJSON(w, http.StatusOK, trip)
}

// updateTripRequest carries the editable display fields of a trip.
// Absent fields are left unchanged.
type updateTripRequest struct {
	Title        *string `json:"title"`
	DateRange    *string `json:"dateRange"`
	City         *string `json:"city"`
	CoverColor   *string `json:"coverColor"`
	CheckInDate  *string `json:"checkInDate"`
	CheckOutDate *string `json:"checkOutDate"`
	FlightOut    *string `json:"flightOut"`
	FlightIn     *string `json:"flightIn"`
	HotelName    *string `json:"hotelName"`
	HotelAddress *string `json:"hotelAddress"`
}

// updateTrip handles PATCH /trips/{tripID}.
func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req updateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, flightChanged, err := s.trips.UpdateInfo(r.Context(), id, service.InfoUpdate{
		Title:        req.Title,
		DateRange:    req.DateRange,
		City:         req.City,
		CoverColor:   req.CoverColor,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		FlightOut:    req.FlightOut,
		FlightIn:     req.FlightIn,
		HotelName:    req.HotelName,
		HotelAddress: req.HotelAddress,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	if flightChanged {
		s.flights.RefreshAsync(trip.ID)
	}
	writeJSON(w, http.StatusOK, trip)
}

// addDay handles POST /trips/{tripID}/days.
func (s *Server) addDay(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.AddDay(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// addEventRequest is the body of POST .../events. All fields are optional —
// the service fills in skeleton defaults.
type addEventRequest struct {
	Time  string   `json:"time"`
	Title string   `json:"title"`
	Desc  string   `json:"desc"`
	Type  string   `json:"type"`
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
}

// addEvent handles POST /trips/{tripID}/days/{dayIdx}/events.
func (s *Server) addEvent(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	dayIdx, err := strconv.Atoi(chi.URLParam(r, "dayIdx"))
	if err != nil || dayIdx < 0 {
		respondBadRequest(w, "invalid day index")
		return
	}

	var req addEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.AddEvent(r.Context(), id, dayIdx, domain.Event{
		Time:  req.Time,
		Title: req.Title,
		Desc:  req.Desc,
		Type:  domain.EventType(req.Type),
		Lat:   req.Lat,
		Lng:   req.Lng,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}
