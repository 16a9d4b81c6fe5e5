package webservice

import (
	"errors"
	"fmt"
)

// Web service errors.
var (
	// ErrUnauthorized indicates the token was rejected by the LMS.
	ErrUnauthorized = errors.New("webservice: invalid or expired token")

	// ErrUnknownScope indicates facet candidates were requested for course ids
	// that did not come from FilteredCourseIDs on the same service.
	ErrUnknownScope = errors.New("webservice: course ids have no known search scope")
)

// RemoteError is an exception payload returned by the LMS with HTTP 200.
type RemoteError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Exception, e.ErrorCode, e.Message)
}

// Unwrap maps token failures to ErrUnauthorized.
func (e *RemoteError) Unwrap() error {
	switch e.ErrorCode {
	case "invalidtoken", "accessexception":
		return ErrUnauthorized
	default:
		return nil
	}
}
