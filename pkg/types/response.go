// Package types holds the wire envelopes shared by every JSON endpoint.
package types

// SuccessEnvelope wraps successful payloads under a single data key so
// clients decode every endpoint the same way.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Success builds the envelope for a payload.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// APIError is the client-facing error body. Details carries structured
// hints and is only set for codes that permit them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error key, mirroring the data
// key of successful responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Failure builds the envelope for an error code and message.
func Failure(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message}}
}
