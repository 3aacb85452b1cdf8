package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Handlers match with errors.Is and
// convert to user-facing text at the point of origin; only ErrInternal-class
// failures reach the webhook recovery boundary.
var (
	// ErrAuthDenied is returned when a sender is not on the allow-list.
	ErrAuthDenied = errors.New("access denied")

	// ErrTransport covers network failures and timeouts talking to a vendor.
	ErrTransport = errors.New("transport error")

	// ErrRemoteRejected covers non-2xx vendor responses.
	ErrRemoteRejected = errors.New("remote rejected request")

	// ErrMalformedPayload covers JSON bodies that do not match the expected shape.
	ErrMalformedPayload = errors.New("malformed payload")
)

// RemoteError is a vendor rejection carrying the HTTP status, so callers can
// map 400/401/403/404 to distinct user-facing messages. It unwraps to
// ErrRemoteRejected.
type RemoteError struct {
	Vendor string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Vendor, e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error { return ErrRemoteRejected }

// RemoteStatus extracts the HTTP status from err if it is a RemoteError.
// Returns 0 when err is some other kind of failure.
func RemoteStatus(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
