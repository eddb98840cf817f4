package models

type Study struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScheduleID *int64 `json:"scheduleId"`
	ResourceID int64  `json:"resourceId"`
	GuideID    *int64 `json:"guideId"`

	// Populated by the read-assembly queries.
	Schedule *Schedule  `json:"schedule,omitempty"`
	Resource *Resource  `json:"resource,omitempty"`
	Guide    *Guide     `json:"guide,omitempty"`
	Sessions []*Session `json:"sessions,omitempty"`
}
