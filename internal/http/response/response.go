// Package response defines the JSON envelope of every error and status body.
package response

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// RateLimited is the body of a 429.
type RateLimited struct {
	Response
	Policy     string `json:"policy,omitempty"`
	RetryAfter int    `json:"retryAfter"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

func TooManyRequests(policy string, retryAfterSeconds int) RateLimited {
	return RateLimited{
		Response:   Error("too many requests"),
		Policy:     policy,
		RetryAfter: retryAfterSeconds,
	}
}
