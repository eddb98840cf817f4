package models

// ErrorResponse is the body of every non-2xx response:
// a short summary plus a best-effort detail string.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
