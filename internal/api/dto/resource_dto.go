package dto

// Envelope wraps a single resource response body.
type Envelope struct {
	Data any `json:"data"`
}

// Pagination reports the window the caller received.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// ListEnvelope wraps a collection response body.
type ListEnvelope struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
