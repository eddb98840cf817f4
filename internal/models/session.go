package models

import "time"

type Session struct {
	ID          int64      `json:"id"`
	StudyID     int64      `json:"studyId"`
	Date        *time.Time `json:"date"`
	Time        *time.Time `json:"time"`
	Insights    *string    `json:"insights"`
	Reference   *string    `json:"reference"`
	StepID      *int64     `json:"stepId"`
	SelectionID *int64     `json:"selectionId"`

	// Populated by the read-assembly queries. SessionSteps is always
	// present in responses, [] when the study has no guide.
	Study        *Study         `json:"study,omitempty"`
	GuideStep    *GuideStep     `json:"guideStep,omitempty"`
	Selection    *Selection     `json:"selection,omitempty"`
	SessionSteps []*SessionStep `json:"sessionSteps"`
}

type SessionStep struct {
	ID          int64      `json:"id"`
	SessionID   int64      `json:"sessionId"`
	GuideStepID int64      `json:"guideStepId"`
	Insights    *string    `json:"insights"`
	GuideStep   *GuideStep `json:"guideStep,omitempty"`
}
