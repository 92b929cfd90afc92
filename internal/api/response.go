package api

// Response is the envelope returned by every upstream endpoint
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// Kind and StatusCode are filled in by the client for failed calls
	Kind       Kind `json:"-"`
	StatusCode int  `json:"-"`
}

// Err returns nil for a successful response and a typed *Error otherwise
func (r *Response[T]) Err() error {
	if r.Success {
		return nil
	}
	message := r.Error
	if message == "" {
		message = r.Message
	}
	kind := r.Kind
	if kind == "" {
		kind = KindServer
	}
	return &Error{Kind: kind, Message: message, StatusCode: r.StatusCode}
}

// OK builds a successful envelope
func OK[T any](data T) *Response[T] {
	return &Response[T]{Success: true, Data: data}
}

// Fail builds a failed envelope
func Fail[T any](kind Kind, status int, message string) *Response[T] {
	return &Response[T]{Success: false, Error: message, Kind: kind, StatusCode: status}
}

// Paginated is a page of a list endpoint
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Empty is the payload of endpoints that return no data
type Empty struct{}
