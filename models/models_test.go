package models

import (
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("Status %q should be valid", s)
		}
	}
	for _, s := range []Status{"", "Done", "submitted", "IN PROGRESS"} {
		if s.Valid() {
			t.Errorf("Status %q should not be valid", s)
		}
	}
}

func TestComplaintIDFromTime(t *testing.T) {
	at := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	if got := ComplaintIDFromTime(at); got != "1787644800000" {
		t.Errorf("ComplaintIDFromTime: got %q", got)
	}
	if ComplaintIDFromTime(at) == ComplaintIDFromTime(at.Add(time.Millisecond)) {
		t.Error("Ids one millisecond apart must differ")
	}
}

func TestValidCoordinates(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lon float64

		valid bool
	}{
		{name: "Mountain View", lat: 37.422, lon: -122.084, valid: true},
		{name: "Null island", lat: 0, lon: 0, valid: true},
		{name: "Poles", lat: -90, lon: 180, valid: true},
		{name: "Latitude out of range", lat: 90.1, lon: 0, valid: false},
		{name: "Longitude out of range", lat: 0, lon: -180.5, valid: false},
	}

	for _, testCase := range testCases {
		if got := ValidCoordinates(testCase.lat, testCase.lon); got != testCase.valid {
			t.Errorf("%s, ValidCoordinates(%v, %v): expected %v, got %v",
				testCase.name, testCase.lat, testCase.lon, testCase.valid, got)
		}
	}
}
