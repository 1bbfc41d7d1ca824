package models

import (
	"strconv"
	"time"
)

// Status is the lifecycle stage of a complaint.
type Status string

const (
	StatusSubmitted  Status = "Submitted"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// AllStatuses lists the statuses in lifecycle order.
var AllStatuses = []Status{StatusSubmitted, StatusInProgress, StatusResolved}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Complaint is a single littered-area report.
type Complaint struct {
	ID          string   `json:"id"`
	Images      []string `json:"images"` // ordered data-URL payloads, at least one
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description"`
	Timestamp   string   `json:"timestamp"` // RFC3339 creation time
	Status      Status   `json:"status"`
}

// ComplaintIDFromTime derives the complaint id from the submission time,
// unix milliseconds rendered as a decimal string.
func ComplaintIDFromTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ValidCoordinates reports whether the pair is a usable geographic position.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

type SubmitComplaintRequest struct {
	Images      []string `json:"images"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description string   `json:"description"`
}

type SubmitComplaintResponse struct {
	Complaint Complaint `json:"complaint"`
}

type ComplaintsResponse struct {
	Complaints []Complaint `json:"complaints"`
	Count      int         `json:"count"`
}

type ComplaintCountsResponse struct {
	Submitted  int `json:"submitted"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Total      int `json:"total"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

type DeleteComplaintRequest struct {
	ID string `json:"id"`
}

type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type MapArgs struct {
	VPort  ViewPort `json:"vport"`
	Center Point    `json:"center"`
}

// MapResult is one aggregated map marker. ComplaintID is set only when the
// cell holds a single complaint.
type MapResult struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Count       int64   `json:"count"`
	ComplaintID string  `json:"complaint_id,omitempty"`
}

// ComplaintLocation is the projection used to build map views.
type ComplaintLocation struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// BroadcastMessage is pushed to dashboard websocket clients on every mutation.
type BroadcastMessage struct {
	Event     string                   `json:"event"` // submitted, status_updated, deleted
	Complaint *Complaint               `json:"complaint,omitempty"`
	Counts    *ComplaintCountsResponse `json:"counts,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	ConnectedClients int    `json:"connected_clients,omitempty"`
}
