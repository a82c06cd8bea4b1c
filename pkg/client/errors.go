package client

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
)

// Kind classifies a failed request by what went wrong in transport.
type Kind int

const (
	// KindBadURL means the request URL could not be built or parsed.
	KindBadURL Kind = iota

	// KindTimeout means the request exceeded its deadline.
	KindTimeout

	// KindNetworkError means the request never produced a response.
	KindNetworkError

	// KindBadStatus means the server answered with a non-2xx status.
	KindBadStatus

	// KindBadBody means the response body could not be read or parsed.
	KindBadBody
)

// RequestError describes a failed counter request. Its Error string is
// the user-facing classification rendered by the client view.
type RequestError struct {
	Kind   Kind
	URL    string
	Status int
	Detail string
	Err    error
}

// Error renders the classification exactly as the view displays it.
func (e *RequestError) Error() string {
	switch e.Kind {
	case KindBadURL:
		return "BadUrl " + e.URL
	case KindTimeout:
		return "Timeout"
	case KindNetworkError:
		return "NetworkError"
	case KindBadStatus:
		return "BadStatus " + strconv.Itoa(e.Status)
	case KindBadBody:
		return "BadBody " + e.Detail
	default:
		return "NetworkError"
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// classifyTransport turns an error from HTTPClient.Do into a
// RequestError with the matching kind.
func classifyTransport(reqURL string, err error) *RequestError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Kind: KindTimeout, URL: reqURL, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Kind: KindTimeout, URL: reqURL, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &RequestError{Kind: KindTimeout, URL: reqURL, Err: err}
	}

	return &RequestError{Kind: KindNetworkError, URL: reqURL, Err: err}
}
