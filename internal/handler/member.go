package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// addMemberRequest is the body of POST /trips/{tripID}/members.
type addMemberRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
}

// addMember handles POST /trips/{tripID}/members.
func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondBadRequest(w, "a valid email is required")
		return
	}

	trip, err := s.members.Add(r.Context(), id, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// renameMemberRequest is the body of PUT /trips/{tripID}/members/{email}.
// An empty name unsets the display name.
type renameMemberRequest struct {
	Name string `json:"name"`
}

// renameMember handles PUT /trips/{tripID}/members/{email}.
func (s *Server) renameMember(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDFromRequest(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		respondBadRequest(w, "invalid member email")
		return
	}

	var req renameMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.members.Rename(r.Context(), id, email, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
