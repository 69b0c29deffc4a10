// Package tooter posts one status per image file, scheduling each image
// after the first at a fixed interval.
package tooter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/photo-tooter/internal/metadata"
)

// Visibility controls the audience of a status.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// Visibilities lists the accepted values in display order.
var Visibilities = []Visibility{VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect}

// ParseVisibility validates a visibility name.
func ParseVisibility(raw string) (Visibility, error) {
	v := Visibility(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Visibilities {
		if v == known {
			return v, nil
		}
	}
	names := make([]string, len(Visibilities))
	for i, known := range Visibilities {
		names[i] = string(known)
	}
	return "", fmt.Errorf("invalid visibility %q (choose from %s)", raw, strings.Join(names, ", "))
}

// StatusRequest is a single status to publish. A nil ScheduledAt posts immediately.
type StatusRequest struct {
	Text        string
	MediaIDs    []string
	Visibility  Visibility
	ScheduledAt *time.Time
}

// ScheduledStatus is a status held by the server until ScheduledAt.
type ScheduledStatus struct {
	ID          string
	ScheduledAt time.Time
}

// Client is the remote account the images are posted to.
type Client interface {
	// UploadMedia uploads the file and returns the media ID.
	UploadMedia(ctx context.Context, path, altText string) (string, error)
	// PostStatus publishes or schedules a status and returns its URL, which
	// is empty for scheduled statuses.
	PostStatus(ctx context.Context, req StatusRequest) (string, error)
	ScheduledStatuses(ctx context.Context) ([]ScheduledStatus, error)
	DeleteScheduledStatus(ctx context.Context, id string) error
}

// MetadataExtractor provides the embedded metadata of an image file.
type MetadataExtractor interface {
	Extract(path string) (metadata.Image, error)
}

// PostResult records an image that was posted or scheduled.
type PostResult struct {
	Path        string
	URL         string
	ScheduledAt *time.Time
}

// PostFailure records an image that could not be posted.
type PostFailure struct {
	Path    string
	Message string
}
