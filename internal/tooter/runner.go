package tooter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/blacktop/photo-tooter/internal/logutil"
	"github.com/blacktop/photo-tooter/internal/media"
)

// ScheduleInterval separates consecutive scheduled statuses.
const ScheduleInterval = 10 * time.Minute

// Runner posts a batch of images, one status each, in order.
type Runner struct {
	Client     Client
	Extractor  MetadataExtractor
	Out        io.Writer
	OutputDir  string
	Visibility Visibility
	// Text replaces the metadata-derived text for every image.
	Text string
	// DryRun prints what would be posted and skips the server and log files.
	DryRun bool

	Now   func() time.Time
	Probe func(path string) (media.Dimensions, error)
}

// Report summarizes a run.
type Report struct {
	Total     int
	Posted    []PostResult
	Failed    []PostFailure
	PostedLog string
	FailedLog string
}

// ScheduleFor returns when the image at index (0-based) should go out.
// The first image is immediate; the rest are spaced ScheduleInterval apart
// from start.
func ScheduleFor(start time.Time, index int) *time.Time {
	if index <= 0 {
		return nil
	}
	at := start.Add(time.Duration(index) * ScheduleInterval)
	return &at
}

// FormatTime renders a scheduled time for logs and output.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Run posts every path. A failing image is recorded and the run moves on;
// the returned error is only set when the log files cannot be written.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	if r.Extractor == nil {
		return nil, errors.New("no metadata extractor configured")
	}
	if r.Client == nil && !r.DryRun {
		return nil, errors.New("no client configured")
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	visibility := r.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	report := &Report{Total: len(paths)}
	fmt.Fprintf(out, "Found %d image(s) to post.\n", report.Total)

	start := now().UTC()
	for i, path := range paths {
		scheduledAt := ScheduleFor(start, i)
		label := "immediately"
		if scheduledAt != nil {
			label = FormatTime(*scheduledAt)
		}
		fmt.Fprintf(out, "\n[%d/%d] Posting %s (scheduled at %s)...\n", i+1, report.Total, filepath.Base(path), label)

		url, err := r.postOne(ctx, out, path, visibility, scheduledAt)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			logutil.Debugf("image failed: path=%s err=%v", path, err)
			report.Failed = append(report.Failed, PostFailure{Path: path, Message: err.Error()})
			continue
		}

		switch {
		case r.DryRun:
			fmt.Fprintln(out, "Done → (dry-run, nothing sent)")
		case url != "":
			fmt.Fprintf(out, "Done → %s\n", url)
		case scheduledAt == nil:
			fmt.Fprintln(out, "Done → (no URL returned)")
		default:
			fmt.Fprintf(out, "Done → (scheduled for %s)\n", FormatTime(*scheduledAt))
		}
		report.Posted = append(report.Posted, PostResult{Path: path, URL: url, ScheduledAt: scheduledAt})
	}

	if r.DryRun {
		fmt.Fprintf(out, "\n[dry-run] %d/%d image(s) would be posted; %d would fail.\n",
			len(report.Posted), report.Total, len(report.Failed))
		return report, nil
	}

	if err := WriteLogs(r.OutputDir, report); err != nil {
		return report, err
	}
	printSummary(out, report)
	return report, nil
}

func (r *Runner) postOne(ctx context.Context, out io.Writer, path string, visibility Visibility, scheduledAt *time.Time) (string, error) {
	img, err := r.Extractor.Extract(path)
	if err != nil {
		return "", err
	}

	text, err := ComposeStatus(r.Text, img)
	if err != nil {
		return "", err
	}

	name := filepath.Base(path)
	if r.DryRun {
		r.describe(out, path, text, img.AltText, visibility)
		return "", nil
	}

	logutil.Debugf("uploading media: path=%s alt_len=%d", path, len(img.AltText))
	mediaID, err := r.Client.UploadMedia(ctx, path, img.AltText)
	if err != nil {
		return "", UploadError{Name: name, Hint: uploadHint(err), Err: err}
	}
	logutil.Debugf("media uploaded: media_id=%s", mediaID)

	url, err := r.Client.PostStatus(ctx, StatusRequest{
		Text:        text,
		MediaIDs:    []string{mediaID},
		Visibility:  visibility,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return "", PostError{Name: name, Err: err}
	}
	return url, nil
}

func (r *Runner) describe(out io.Writer, path, text, alt string, visibility Visibility) {
	fmt.Fprintf(out, "[dry-run] visibility: %s\n", visibility)
	fmt.Fprintf(out, "[dry-run] alt text: %q\n", alt)
	if r.Probe != nil {
		if dims, err := r.Probe(path); err == nil {
			fmt.Fprintf(out, "[dry-run] dimensions: %s\n", dims)
			if edge := dims.LongEdge(); edge > largeLongEdge {
				fmt.Fprintf(out, "[dry-run] warning: long edge is %d px; some instances reject images this large\n", edge)
			}
		} else {
			logutil.Debugf("probe failed: path=%s err=%v", path, err)
		}
	}
	fmt.Fprintf(out, "[dry-run] status:\n%s\n", text)
}

func printSummary(out io.Writer, report *Report) {
	if len(report.Posted) > 0 {
		fmt.Fprintf(out, "\nPosted/scheduled %d/%d image(s). Details written to: %s\n",
			len(report.Posted), report.Total, report.PostedLog)
	}
	if len(report.Failed) == 0 {
		fmt.Fprintf(out, "\nAll %d image(s) posted/scheduled successfully.\n", report.Total)
		return
	}
	fmt.Fprintf(out, "%d image(s) failed. Paths written to: %s\n", len(report.Failed), report.FailedLog)
	fmt.Fprintf(out, "You can retry just the failures with:\n  photo-tooter post $(cat %s)\n", FailedLogName)
}
