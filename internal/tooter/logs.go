package tooter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Run log file names, written to the output directory and overwritten each run.
const (
	PostedLogName = "photo-tooter-posted.txt"
	FailedLogName = "photo-tooter-failed.txt"
)

// WriteLogs writes the posted log (path, URL, scheduled time, tab separated)
// when anything was posted, and the failed log (one path per line, usable
// as the next run's arguments) when anything failed. It sets the log paths
// on report.
func WriteLogs(dir string, report *Report) error {
	if len(report.Posted) > 0 {
		path := filepath.Join(dir, PostedLogName)
		err := writeLines(path, len(report.Posted), func(w *bufio.Writer, i int) {
			p := report.Posted[i]
			scheduled := ""
			if p.ScheduledAt != nil {
				scheduled = FormatTime(*p.ScheduledAt)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Path, p.URL, scheduled)
		})
		if err != nil {
			return err
		}
		report.PostedLog = path
	}

	if len(report.Failed) > 0 {
		path := filepath.Join(dir, FailedLogName)
		err := writeLines(path, len(report.Failed), func(w *bufio.Writer, i int) {
			fmt.Fprintf(w, "%s\n", report.Failed[i].Path)
		})
		if err != nil {
			return err
		}
		report.FailedLog = path
	}
	return nil
}

func writeLines(path string, n int, line func(w *bufio.Writer, i int)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		line(w, i)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
