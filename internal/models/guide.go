package models

// Guide is an ordered template of steps walked during a study's sessions.
// Step order is defined by each step's Index, never by insertion order.
type Guide struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	GuideSteps []*GuideStep `json:"guideSteps,omitempty"`
}

type GuideStep struct {
	ID           int64   `json:"id"`
	GuideID      int64   `json:"guideId"`
	Name         string  `json:"name"`
	Instructions *string `json:"instructions"`
	Example      *string `json:"example"`
	Index        int     `json:"index"`
}
