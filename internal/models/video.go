package models

const (
	VideoStatusDone  = "done"
	VideoStatusError = "error"
)

// VideoJob is a provider-side talking-avatar render as last observed.
type VideoJob struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	ResultURL    string  `json:"resultUrl,omitempty"`
	ErrorMessage string  `json:"error,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
}

// Terminal reports whether the provider will not change the job any further.
func (j VideoJob) Terminal() bool {
	return j.Status == VideoStatusDone || j.Status == VideoStatusError
}
