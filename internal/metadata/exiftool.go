package metadata

import (
	"fmt"
	"os/exec"

	"github.com/barasher/go-exiftool"
	"github.com/blacktop/photo-tooter/internal/logutil"
)

const defaultExiftool = "exiftool"

// fields copied out of an exiftool record, including the alt text spellings.
var keptFields = append(append([]string{}, RequestedFields...), altTextFields[1:]...)

type exiftoolProcess interface {
	ExtractMetadata(files ...string) []exiftool.FileMetadata
	Close() error
}

// ExiftoolReader reads metadata through a single stay-open exiftool
// process, started on the first Read.
type ExiftoolReader struct {
	binary string
	open   func(binary string) (exiftoolProcess, error)

	proc     exiftoolProcess
	started  bool
	startErr error
}

// NewExiftoolReader returns a reader for the given exiftool binary
// ("" means exiftool on PATH).
func NewExiftoolReader(binary string) *ExiftoolReader {
	if binary == "" {
		binary = defaultExiftool
	}
	return &ExiftoolReader{binary: binary, open: startExiftool}
}

func startExiftool(binary string) (exiftoolProcess, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, ToolNotFoundError{Tool: binary, Err: err}
	}
	et, err := exiftool.NewExiftool(exiftool.SetExiftoolBinaryPath(path))
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	logutil.Infof("started exiftool: path=%s", path)
	return et, nil
}

// Read returns the requested fields of path. A missing binary yields
// ToolNotFoundError; exiftool failures on the file yield ToolError.
func (r *ExiftoolReader) Read(path string) (Fields, error) {
	if !r.started {
		r.started = true
		r.proc, r.startErr = r.open(r.binary)
	}
	if r.startErr != nil {
		return nil, r.startErr
	}

	results := r.proc.ExtractMetadata(path)
	if len(results) != 1 {
		return nil, ToolError{Tool: r.binary, Path: path, Reason: "unexpected exiftool JSON format"}
	}
	res := results[0]
	if res.Err != nil {
		return nil, ToolError{Tool: r.binary, Path: path, Reason: res.Err.Error()}
	}

	fields := make(Fields, len(RequestedFields))
	for _, name := range keptFields {
		if v, ok := res.Fields[name]; ok {
			fields[name] = v
		}
	}
	logutil.Debugf("exiftool fields: path=%s count=%d", path, len(fields))
	return fields, nil
}

// Close stops the exiftool process if it was started.
func (r *ExiftoolReader) Close() error {
	if r.proc == nil {
		return nil
	}
	err := r.proc.Close()
	r.proc = nil
	r.started = false
	return err
}
