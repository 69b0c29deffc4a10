package tooter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/blacktop/photo-tooter/internal/logutil"
)

// UnscheduleAll deletes every scheduled status on the account and returns
// how many were deleted. Individual delete failures do not stop the loop.
func UnscheduleAll(ctx context.Context, client Client, out io.Writer) (int, error) {
	scheduled, err := client.ScheduledStatuses(ctx)
	if err != nil {
		return 0, fmt.Errorf("list scheduled statuses: %w", err)
	}
	if len(scheduled) == 0 {
		fmt.Fprintln(out, "No scheduled toots found.")
		return 0, nil
	}

	fmt.Fprintf(out, "Found %d scheduled toots. Deleting...\n", len(scheduled))

	deleted := 0
	var errs []error
	for _, item := range scheduled {
		if err := client.DeleteScheduledStatus(ctx, item.ID); err != nil {
			logutil.Errorf("delete scheduled status failed: id=%s err=%v", item.ID, err)
			errs = append(errs, fmt.Errorf("delete scheduled status %s: %w", item.ID, err))
			continue
		}
		deleted++
		fmt.Fprintf(out, "Deleted scheduled toot ID %s\n", item.ID)
	}

	if len(errs) > 0 {
		return deleted, errors.Join(errs...)
	}
	fmt.Fprintln(out, "All scheduled toots deleted.")
	return deleted, nil
}
