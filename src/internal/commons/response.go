package commons

type Response[T any] struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Data      *T       `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// WithRequestID stamps the envelope with the request's correlation ID.
func (r Response[T]) WithRequestID(id string) Response[T] {
	r.RequestID = id
	return r
}
