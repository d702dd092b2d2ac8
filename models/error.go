package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
