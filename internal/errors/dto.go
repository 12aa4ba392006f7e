package errors

// ErrorResponse is the wire shape every failed request returns, from a
// rejected discount to a version conflict on a concurrent mutation.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the display message (the hint chain), the internal
// error string, and any reportable details attached by the builder.
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}
