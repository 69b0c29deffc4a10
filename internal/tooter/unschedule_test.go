package tooter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/blacktop/photo-tooter/internal/logutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnscheduleAll(t *testing.T) {
	client := &fakeClient{scheduled: []ScheduledStatus{{ID: "1", ScheduledAt: runStart}, {ID: "2", ScheduledAt: runStart}}}
	var out bytes.Buffer

	n, err := UnscheduleAll(context.Background(), client, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1", "2"}, client.deleted)
	assert.Equal(t, "Found 2 scheduled toots. Deleting...\n"+
		"Deleted scheduled toot ID 1\n"+
		"Deleted scheduled toot ID 2\n"+
		"All scheduled toots deleted.\n", out.String())
}

func TestUnscheduleAllEmpty(t *testing.T) {
	var out bytes.Buffer
	n, err := UnscheduleAll(context.Background(), &fakeClient{}, &out)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "No scheduled toots found.\n", out.String())
}

func TestUnscheduleAllPartialFailure(t *testing.T) {
	client := &fakeClient{
		scheduled:  []ScheduledStatus{{ID: "1"}, {ID: "2"}, {ID: "3"}},
		deleteErrs: map[string]error{"2": errors.New("not found")},
	}
	var out, logs bytes.Buffer
	logutil.SetOutput(&logs)
	t.Cleanup(func() { logutil.SetOutput(os.Stderr) })

	n, err := UnscheduleAll(context.Background(), client, &out)
	assert.Equal(t, 2, n)
	assert.Contains(t, logs.String(), "delete scheduled status failed: id=2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete scheduled status 2: not found")
	assert.Equal(t, []string{"1", "3"}, client.deleted)
	assert.NotContains(t, out.String(), "All scheduled toots deleted.")
}
