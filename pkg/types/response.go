package types

// SuccessEnvelope wraps every successful API response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error payload. Code is a stable machine
// string; Details carries field-level validation context when present.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
