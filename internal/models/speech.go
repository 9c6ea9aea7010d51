package models

// SpeechResult is what a synthesis request produced. Failures are reported
// through Success and Error rather than a Go error.
type SpeechResult struct {
	Audio             []byte  `json:"-"`
	EstimatedDuration float64 `json:"duration"`
	Success           bool    `json:"success"`
	Error             string  `json:"error,omitempty"`
}
