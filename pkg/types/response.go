package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Reason is a stable machine-readable
// sub-code, set for validation failures a client can act on.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
