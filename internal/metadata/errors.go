package metadata

import "fmt"

// ToolNotFoundError is returned when the metadata tool is not installed.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found; install it (e.g. brew install exiftool) or use --metadata exif", e.Tool)
}

func (e ToolNotFoundError) Unwrap() error { return e.Err }

// ToolError is returned when the tool fails on a file or its output cannot be parsed.
type ToolError struct {
	Tool   string
	Path   string
	Reason string
}

func (e ToolError) Error() string {
	return fmt.Sprintf("error running %s on %s: %s", e.Tool, e.Path, e.Reason)
}
