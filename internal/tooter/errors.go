package tooter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoStatusText is returned when there is neither an explicit text nor a
// title or description to build one from.
var ErrNoStatusText = errors.New("no title or description found in metadata; use --text to specify manually")

const (
	sizeHint = "File is larger than this instance's max media size (e.g. 16 MB). " +
		"Export a smaller version and try again."
	resolutionHint = "Image resolution is too large for this instance. " +
		"Export a version with a smaller long edge (for example, 4000-6000 px) and try again."

	// largeLongEdge is the upper end of the long edge resolutionHint suggests.
	largeLongEdge = 6000
)

// RemoteError is an error reported by the server. Message is the server's
// own explanation, without transport details.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Message)
}

// UploadError wraps a failed media upload with a user-actionable hint.
type UploadError struct {
	Name string
	Hint string
	Err  error
}

func (e UploadError) Error() string {
	return fmt.Sprintf("error uploading %s: %s", e.Name, e.Hint)
}

func (e UploadError) Unwrap() error { return e.Err }

// PostError wraps a failed status creation.
type PostError struct {
	Name string
	Err  error
}

func (e PostError) Error() string {
	return fmt.Sprintf("error posting status for %s: %v", e.Name, e.Err)
}

func (e PostError) Unwrap() error { return e.Err }

// uploadHint maps known server messages to advice; anything else is
// returned as the server worded it.
func uploadHint(err error) string {
	msg := err.Error()
	var remote RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		msg = remote.Message
	}
	switch {
	case strings.Contains(msg, "less than 16 MB"):
		return sizeHint
	case strings.Contains(msg, "images are not supported"):
		return resolutionHint
	default:
		return msg
	}
}
