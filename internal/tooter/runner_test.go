package tooter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/photo-tooter/internal/media"
	"github.com/blacktop/photo-tooter/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	uploadErrs map[string]error
	postErrs   map[string]error
	uploads    []string
	alts       []string
	requests   []StatusRequest
	scheduled  []ScheduledStatus
	deleteErrs map[string]error
	deleted    []string
}

func (c *fakeClient) UploadMedia(_ context.Context, path, altText string) (string, error) {
	c.uploads = append(c.uploads, path)
	c.alts = append(c.alts, altText)
	if err := c.uploadErrs[filepath.Base(path)]; err != nil {
		return "", err
	}
	return "media-" + filepath.Base(path), nil
}

func (c *fakeClient) PostStatus(_ context.Context, req StatusRequest) (string, error) {
	c.requests = append(c.requests, req)
	name := strings.TrimPrefix(req.MediaIDs[0], "media-")
	if err := c.postErrs[name]; err != nil {
		return "", err
	}
	if req.ScheduledAt != nil {
		return "", nil
	}
	return "https://mastodon.example/@me/" + name, nil
}

func (c *fakeClient) ScheduledStatuses(context.Context) ([]ScheduledStatus, error) {
	return c.scheduled, nil
}

func (c *fakeClient) DeleteScheduledStatus(_ context.Context, id string) error {
	if err := c.deleteErrs[id]; err != nil {
		return err
	}
	c.deleted = append(c.deleted, id)
	return nil
}

type fakeExtractor struct {
	images map[string]metadata.Image
	errs   map[string]error
}

func (e *fakeExtractor) Extract(path string) (metadata.Image, error) {
	name := filepath.Base(path)
	if err := e.errs[name]; err != nil {
		return metadata.Image{}, err
	}
	if img, ok := e.images[name]; ok {
		return img, nil
	}
	return metadata.Image{Title: strings.TrimSuffix(name, filepath.Ext(name)), Hashtags: []string{"#Tag"}}, nil
}

var runStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// steppingClock moves forward an hour on every call, so anything derived
// from more than the first call would show up in the schedule.
func steppingClock() func() time.Time {
	now := runStart
	return func() time.Time {
		t := now
		now = now.Add(time.Hour)
		return t
	}
}

func newRunner(t *testing.T, client *fakeClient, extractor *fakeExtractor) (*Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Runner{
		Client:     client,
		Extractor:  extractor,
		Out:        &out,
		OutputDir:  t.TempDir(),
		Visibility: VisibilityUnlisted,
		Now:        steppingClock(),
	}, &out
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRunSchedulesFromRunStart(t *testing.T) {
	client := &fakeClient{}
	runner, out := newRunner(t, client, &fakeExtractor{})

	paths := []string{"/p/one.jpg", "/p/two.jpg", "/p/three.jpg"}
	report, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, client.requests, 3)
	assert.Nil(t, client.requests[0].ScheduledAt)
	require.NotNil(t, client.requests[1].ScheduledAt)
	require.NotNil(t, client.requests[2].ScheduledAt)
	assert.Equal(t, runStart.Add(10*time.Minute), *client.requests[1].ScheduledAt)
	assert.Equal(t, runStart.Add(20*time.Minute), *client.requests[2].ScheduledAt)

	for _, req := range client.requests {
		assert.Equal(t, VisibilityUnlisted, req.Visibility)
		assert.Len(t, req.MediaIDs, 1)
	}
	assert.Equal(t, "one\n\n#Tag", client.requests[0].Text)

	assert.Len(t, report.Posted, 3)
	assert.Empty(t, report.Failed)
	assert.Equal(t, "https://mastodon.example/@me/one.jpg", report.Posted[0].URL)
	assert.Empty(t, report.FailedLog)
	assert.NoFileExists(t, filepath.Join(runner.OutputDir, FailedLogName))

	assert.Equal(t, []string{
		"/p/one.jpg\thttps://mastodon.example/@me/one.jpg\t",
		"/p/two.jpg\t\t2025-03-01T12:10:00Z",
		"/p/three.jpg\t\t2025-03-01T12:20:00Z",
	}, readLines(t, report.PostedLog))

	assert.Contains(t, out.String(), "Found 3 image(s) to post.")
	assert.Contains(t, out.String(), "[1/3] Posting one.jpg (scheduled at immediately)...")
	assert.Contains(t, out.String(), "[2/3] Posting two.jpg (scheduled at 2025-03-01T12:10:00Z)...")
	assert.Contains(t, out.String(), "Done → (scheduled for 2025-03-01T12:20:00Z)")
	assert.Contains(t, out.String(), "All 3 image(s) posted/scheduled successfully.")
}

func TestRunContinuesAfterUploadFailure(t *testing.T) {
	client := &fakeClient{uploadErrs: map[string]error{
		"two.jpg": RemoteError{Op: "upload media", StatusCode: 422, Message: "Validation failed: File file size must be less than 16 MB"},
	}}
	runner, out := newRunner(t, client, &fakeExtractor{})

	report, err := runner.Run(context.Background(), []string{"/p/one.jpg", "/p/two.jpg", "/p/three.jpg"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/p/one.jpg", "/p/two.jpg", "/p/three.jpg"}, client.uploads)
	require.Len(t, client.requests, 2)
	assert.Equal(t, runStart.Add(20*time.Minute), *client.requests[1].ScheduledAt, "image 3 keeps its slot")

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "/p/two.jpg", report.Failed[0].Path)
	assert.Equal(t, "error uploading two.jpg: "+sizeHint, report.Failed[0].Message)

	assert.Equal(t, []string{"/p/two.jpg"}, readLines(t, report.FailedLog))
	posted := readLines(t, report.PostedLog)
	require.Len(t, posted, 2)
	assert.True(t, strings.HasPrefix(posted[0], "/p/one.jpg\t"))
	assert.True(t, strings.HasPrefix(posted[1], "/p/three.jpg\t"))

	assert.Contains(t, out.String(), "Error: error uploading two.jpg")
	assert.Contains(t, out.String(), "Posted/scheduled 2/3 image(s).")
	assert.Contains(t, out.String(), "1 image(s) failed.")
	assert.Contains(t, out.String(), "photo-tooter post $(cat photo-tooter-failed.txt)")
}

func TestRunPerImageFailures(t *testing.T) {
	client := &fakeClient{postErrs: map[string]error{"c.jpg": errors.New("post status: 500 Internal Server Error")}}
	extractor := &fakeExtractor{
		images: map[string]metadata.Image{"b.jpg": {Hashtags: []string{"#OnlyTags"}}},
		errs:   map[string]error{"a.jpg": metadata.ToolError{Tool: "exiftool", Path: "/p/a.jpg", Reason: "File not found"}},
	}
	runner, _ := newRunner(t, client, extractor)

	report, err := runner.Run(context.Background(), []string{"/p/a.jpg", "/p/b.jpg", "/p/c.jpg", "/p/d.jpg"})
	require.NoError(t, err)

	require.Len(t, report.Failed, 3)
	assert.Equal(t, "error running exiftool on /p/a.jpg: File not found", report.Failed[0].Message)
	assert.Equal(t, ErrNoStatusText.Error(), report.Failed[1].Message)
	assert.Equal(t, "error posting status for c.jpg: post status: 500 Internal Server Error", report.Failed[2].Message)

	require.Len(t, report.Posted, 1)
	assert.Equal(t, "/p/d.jpg", report.Posted[0].Path)
	assert.Equal(t, runStart.Add(30*time.Minute), *report.Posted[0].ScheduledAt)
	assert.Equal(t, []string{"/p/a.jpg", "/p/b.jpg", "/p/c.jpg"}, readLines(t, report.FailedLog))
}

func TestRunAllFailedWritesNoPostedLog(t *testing.T) {
	client := &fakeClient{uploadErrs: map[string]error{"a.jpg": errors.New("boom")}}
	runner, _ := newRunner(t, client, &fakeExtractor{})

	report, err := runner.Run(context.Background(), []string{"/p/a.jpg"})
	require.NoError(t, err)
	assert.Empty(t, report.PostedLog)
	assert.NoFileExists(t, filepath.Join(runner.OutputDir, PostedLogName))
	assert.Equal(t, "error uploading a.jpg: boom", report.Failed[0].Message)
}

func TestRunTextOverrideKeepsHashtagsAndAltText(t *testing.T) {
	client := &fakeClient{}
	extractor := &fakeExtractor{images: map[string]metadata.Image{
		"a.jpg": {Title: "T", AltText: "A heron", Hashtags: []string{"#Heron", "#Marsh"}},
	}}
	runner, _ := newRunner(t, client, extractor)
	runner.Text = "Morning walk"

	_, err := runner.Run(context.Background(), []string{"/p/a.jpg"})
	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, "Morning walk\n\n#Heron #Marsh", client.requests[0].Text)
	assert.Equal(t, []string{"A heron"}, client.alts)
}

func TestRunDryRun(t *testing.T) {
	client := &fakeClient{}
	runner, out := newRunner(t, client, &fakeExtractor{})
	runner.DryRun = true
	runner.Probe = func(path string) (media.Dimensions, error) {
		if filepath.Base(path) == "b.jpg" {
			return media.Dimensions{Width: 5000, Height: 8000}, nil
		}
		return media.Dimensions{Width: 6000, Height: 4000}, nil
	}

	report, err := runner.Run(context.Background(), []string{"/p/a.jpg", "/p/b.jpg"})
	require.NoError(t, err)

	assert.Empty(t, client.uploads)
	assert.Empty(t, client.requests)
	assert.Len(t, report.Posted, 2)
	assert.Equal(t, runStart.Add(10*time.Minute), *report.Posted[1].ScheduledAt)
	assert.NoFileExists(t, filepath.Join(runner.OutputDir, PostedLogName))
	assert.Contains(t, out.String(), "[dry-run] dimensions: 6000x4000")
	assert.Contains(t, out.String(), "[dry-run] dimensions: 5000x8000\n[dry-run] warning: long edge is 8000 px")
	assert.Equal(t, 1, strings.Count(out.String(), "[dry-run] warning:"), "only images above the limit are flagged")
	assert.Contains(t, out.String(), "[dry-run] status:\na\n\n#Tag")
	assert.Contains(t, out.String(), "[dry-run] 2/2 image(s) would be posted; 0 would fail.")
}

func TestRunRequiresCollaborators(t *testing.T) {
	_, err := (&Runner{Client: &fakeClient{}}).Run(context.Background(), []string{"a.jpg"})
	assert.Error(t, err)

	_, err = (&Runner{Extractor: &fakeExtractor{}}).Run(context.Background(), []string{"a.jpg"})
	assert.Error(t, err)

	_, err = (&Runner{Extractor: &fakeExtractor{}, DryRun: true, OutputDir: t.TempDir()}).Run(context.Background(), []string{"a.jpg"})
	assert.NoError(t, err)
}

func TestUploadHint(t *testing.T) {
	assert.Equal(t, sizeHint, uploadHint(errors.New("422: File file size must be less than 16 MB")))
	assert.Equal(t, resolutionHint, uploadHint(RemoteError{Op: "upload media", Message: "Validation failed: Images larger than 8294400 pixels images are not supported"}))
	assert.Equal(t, "Rate limit exceeded", uploadHint(RemoteError{Op: "upload media", StatusCode: 429, Message: "Rate limit exceeded"}))
	assert.Equal(t, "dial tcp: timeout", uploadHint(errors.New("dial tcp: timeout")))
}

func TestScheduleFor(t *testing.T) {
	assert.Nil(t, ScheduleFor(runStart, 0))
	assert.Equal(t, runStart.Add(10*time.Minute), *ScheduleFor(runStart, 1))
	assert.Equal(t, runStart.Add(90*time.Minute), *ScheduleFor(runStart, 9))
}
