package handler

import (
	"net/http"
	"strconv"
)

// getCurrency handles GET /trips/{tripID}/currency.
// Optional ?amount= and ?currency= ask for a one-off conversion into the
// base currency alongside the trip's currency view.
func (s *Server) getCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var amount float64
	currency := r.URL.Query().Get("currency")
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respondBadRequest(w, "invalid amount")
			return
		}
	}

	overview, err := s.currency.Overview(r.Context(), id, amount, currency)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
