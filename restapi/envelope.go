package restapi

// Response is the backend's single-object envelope.
type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// ListResponse is the backend's paged list envelope.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
