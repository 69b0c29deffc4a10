package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blacktop/photo-tooter/internal/config"
	"github.com/blacktop/photo-tooter/internal/logutil"
	"github.com/blacktop/photo-tooter/internal/tooter"
	mastodonapi "github.com/mattn/go-mastodon"
	"github.com/tomnomnom/linkheader"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "photo-tooter/1"

	scheduledStatusesPath = "/api/v1/scheduled_statuses"
	scheduledPageSize     = 40
)

// Client wraps the Mastodon API client with photo-tooter semantics.
type Client struct {
	client *mastodonapi.Client
	server string
	token  string
}

// New constructs a Mastodon client from the saved configuration.
func New(cfg config.Config) (*Client, error) {
	server := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	token := strings.TrimSpace(cfg.AccessToken)

	var missing []string
	if server == "" {
		missing = append(missing, "base_url")
	}
	if token == "" {
		missing = append(missing, "access_token")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("mastodon credentials not configured (empty %s)", strings.Join(missing, ", "))
	}

	mastodonClient := mastodonapi.NewClient(&mastodonapi.Config{
		Server:      server,
		AccessToken: token,
	})
	mastodonClient.Timeout = requestTimeout

	return &Client{client: mastodonClient, server: server, token: token}, nil
}

// UploadMedia uploads an image with its alt text and returns the media ID.
func (c *Client) UploadMedia(ctx context.Context, path, alt string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("image %q not found", path)
		}
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	attachment, err := c.client.UploadMediaFromMedia(ctx, &mastodonapi.Media{
		File:        file,
		Description: alt,
	})
	if err != nil {
		return "", remoteError("upload media", err)
	}

	return string(attachment.ID), nil
}

// PostStatus publishes a toot, or schedules it when req.ScheduledAt is set.
// Scheduled toots have no URL yet.
func (c *Client) PostStatus(ctx context.Context, req tooter.StatusRequest) (string, error) {
	mediaIDs := make([]mastodonapi.ID, 0, len(req.MediaIDs))
	for _, id := range req.MediaIDs {
		mediaIDs = append(mediaIDs, mastodonapi.ID(id))
	}

	status, err := c.client.PostStatus(ctx, &mastodonapi.Toot{
		Status:      req.Text,
		MediaIDs:    mediaIDs,
		Visibility:  string(req.Visibility),
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return "", remoteError("post status", err)
	}
	if status == nil {
		return "", nil
	}
	return status.URL, nil
}

type scheduledStatus struct {
	ID          string    `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ScheduledStatuses lists every scheduled toot, following pagination links.
func (c *Client) ScheduledStatuses(ctx context.Context) ([]tooter.ScheduledStatus, error) {
	var result []tooter.ScheduledStatus

	next := fmt.Sprintf("%s%s?limit=%d", c.server, scheduledStatusesPath, scheduledPageSize)
	for next != "" {
		resp, err := c.do(ctx, http.MethodGet, next)
		if err != nil {
			return nil, err
		}

		var page []scheduledStatus
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode scheduled statuses: %w", err)
		}
		for _, s := range page {
			result = append(result, tooter.ScheduledStatus{ID: s.ID, ScheduledAt: s.ScheduledAt})
		}

		next = ""
		if len(page) > 0 {
			for _, link := range linkheader.Parse(resp.Header.Get("Link")).FilterByRel("next") {
				next = link.URL
				break
			}
		}
		logutil.Debugf("scheduled statuses page: count=%d next=%q", len(page), next)
	}

	return result, nil
}

// DeleteScheduledStatus cancels one scheduled toot.
func (c *Client) DeleteScheduledStatus(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%s/%s", c.server, scheduledStatusesPath, id))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, scheduledStatusesPath, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, tooter.RemoteError{
			Op:         strings.ToLower(method) + " scheduled statuses",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}
	return resp, nil
}

// errorMessage extracts Mastodon's {"error": "..."} body.
func errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(resp.StatusCode)
}

func remoteError(op string, err error) error {
	var apiErr *mastodonapi.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return tooter.RemoteError{Op: op, StatusCode: apiErr.StatusCode, Message: msg}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tooter.RemoteError{Op: op, Message: err.Error()}
}
