// Package domain contains the core trip-document model for the Ryokou API.
// This package has zero I/O dependencies and is imported by every other
// internal package (store, service, handler). All operations are pure:
// they take a Trip value and return a new Trip value, never mutating shared
// state, so the same functions serve both the HTTP layer and tests.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Trip is the root collaborative document representing one journey.
// It is persisted as a single JSON document; field names below are the
// document schema and must stay stable across releases (older documents
// are upgraded on read, see Normalize).
//
// Members and MemberEmails are deliberately redundant: MemberEmails exists
// so the store can filter trips by membership without unpacking Members.
// The two must stay in lockstep — AddMember is the only path that grows them.
type Trip struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	DateRange    string    `json:"dateRange"`
	City         string    `json:"city"`
	CoverColor   string    `json:"coverColor"`
	Members      []Member  `json:"members"`
	MemberEmails []string  `json:"memberEmails"`
	Days         []Day     `json:"days"`
	Flight       *Flight   `json:"flight,omitempty"`
	Hotel        *Hotel    `json:"hotel,omitempty"`
	CheckInDate  string    `json:"checkInDate,omitempty"`
	CheckOutDate string    `json:"checkOutDate,omitempty"`
	Bills        []Bill    `json:"bills,omitempty"`
}

// Flight holds the outbound/return flight numbers entered by the user and
// the scheduled times resolved from the flight-data service. OutTime and
// InTime are advisory only — best-effort lookups, never authoritative.
type Flight struct {
	Out     string `json:"out,omitempty"`
	In      string `json:"in,omitempty"`
	OutTime string `json:"outTime,omitempty"`
	InTime  string `json:"inTime,omitempty"`
}

// Hotel holds the accommodation details for a trip.
type Hotel struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Day is one itinerary day with an ordered list of events.
type Day struct {
	Day      string  `json:"day"`
	Date     string  `json:"date,omitempty"`
	Location string  `json:"location"`
	Events   []Event `json:"events"`
}

// EventType categorises an itinerary event.
type EventType string

const (
	EventTypeSpot      EventType = "spot"
	EventTypeFood      EventType = "food"
	EventTypeTransport EventType = "transport"
)

// Event is a single itinerary entry within a day.
type Event struct {
	Title string    `json:"title"`
	Time  string    `json:"time"`
	Desc  string    `json:"desc"`
	Type  EventType `json:"type"`
	Lat   *float64  `json:"lat,omitempty"`
	Lng   *float64  `json:"lng,omitempty"`
}

// NewTrip returns the default trip skeleton with the creator as sole member.
// The creator email is lowercased so membership queries (which lowercase the
// caller's email) always match.
func NewTrip(creatorEmail string) Trip {
	email := strings.ToLower(strings.TrimSpace(creatorEmail))
	return Trip{
		ID:           uuid.New(),
		Title:        "New Journey",
		DateRange:    "TBD",
		City:         "Tokyo",
		CoverColor:   "border-jp-accent",
		Members:      []Member{{Email: email}},
		MemberEmails: []string{email},
		Days:         []Day{},
	}
}

// AppendDay returns a copy of t with the next day skeleton appended.
// The day label continues the existing sequence ("Day 1", "Day 2", …).
func AppendDay(t Trip) Trip {
	days := make([]Day, len(t.Days), len(t.Days)+1)
	copy(days, t.Days)
	t.Days = append(days, Day{
		Day:    fmt.Sprintf("Day %d", len(t.Days)+1),
		Events: []Event{},
	})
	return t
}

// AppendEvent returns a copy of t with ev appended to the day at dayIdx.
// Zero-value fields fall back to the editor defaults (title "New Activity",
// time "12:00", type "spot"). Returns ErrNotFound if dayIdx is out of range
// and ErrValidation if the event type is not one of the known kinds.
func AppendEvent(t Trip, dayIdx int, ev Event) (Trip, error) {
	if dayIdx < 0 || dayIdx >= len(t.Days) {
		return Trip{}, fmt.Errorf("%w: day %d does not exist", ErrNotFound, dayIdx)
	}
	if ev.Title == "" {
		ev.Title = "New Activity"
	}
	if ev.Time == "" {
		ev.Time = "12:00"
	}
	if ev.Type == "" {
		ev.Type = EventTypeSpot
	}
	switch ev.Type {
	case EventTypeSpot, EventTypeFood, EventTypeTransport:
	default:
		return Trip{}, fmt.Errorf("%w: unknown event type %q", ErrValidation, ev.Type)
	}

	days := make([]Day, len(t.Days))
	copy(days, t.Days)
	events := make([]Event, len(days[dayIdx].Events), len(days[dayIdx].Events)+1)
	copy(events, days[dayIdx].Events)
	days[dayIdx].Events = append(events, ev)
	t.Days = days
	return t, nil
}
