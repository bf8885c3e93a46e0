package httpclient

import (
	"errors"
	"fmt"
	"net"
)

// FetchError is a transport-level failure: DNS, connect, TLS, timeout, or a
// response that could not be read or decoded. StatusCode is set when a
// response arrived before the failure.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time
func (e *FetchError) Timeout() bool {
	return IsTimeout(e.Err)
}

// IsTimeout reports whether err is a network timeout
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
