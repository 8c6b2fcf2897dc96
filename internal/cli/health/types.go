// Package health holds the shared shape of a network function's /health
// response for CLI consumers.
package health

// Response is the body served by every network function's /health
// endpoint: the fixed fields below plus function specific details.
type Response struct {
	Status       string `json:"status"`
	NFType       string `json:"nfType"`
	NFInstanceID string `json:"nfInstanceId"`
	Uptime       string `json:"uptime"`
}

// Healthy reports whether the function answered with a healthy status.
func (r *Response) Healthy() bool {
	return r.Status == "healthy"
}
