package models

import "time"

type Schedule struct {
	ID               int64      `json:"id"`
	Day              string     `json:"day"`
	TimeStart        string     `json:"timeStart"`
	Repeats          string     `json:"repeats"`
	Starts           *time.Time `json:"starts"`
	Ends             *time.Time `json:"ends"`
	ExcludeDayOfWeek *string    `json:"excludeDayOfWeek"`
	ExcludeDate      *time.Time `json:"excludeDate"`

	// Populated on the schedule detail read.
	Studies []*Study `json:"studies,omitempty"`
}
