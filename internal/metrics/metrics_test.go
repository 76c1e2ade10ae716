package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLines(t *testing.T, text string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		require.Len(t, parts, 2)
		out[parts[0]] = parts[1]
	}
	return out
}

func TestRenderInitialStateIsZero(t *testing.T) {
	r := NewRegistry([]string{"index", "home"})

	var sb strings.Builder
	require.NoError(t, r.Render(&sb))

	values := parseLines(t, sb.String())
	assert.Equal(t, "0", values["index_request_count"])
	assert.Equal(t, "0", values["index_last_response_time"])
	assert.Equal(t, "0", values["index_successful_request_count"])
	assert.Equal(t, "0", values["index_failed_request_count"])
	assert.Equal(t, "0", values["home_request_count"])
}

func TestRecordSuccessUpdatesCountersAndGauge(t *testing.T) {
	r := NewRegistry([]string{"index"})

	r.RecordSuccess("index", 42)

	var sb strings.Builder
	require.NoError(t, r.Render(&sb))
	values := parseLines(t, sb.String())

	assert.Equal(t, "1", values["index_request_count"])
	assert.Equal(t, "1", values["index_successful_request_count"])
	assert.Equal(t, "0", values["index_failed_request_count"])
	assert.Equal(t, "42", values["index_last_response_time"])
}

func TestRecordFailureLeavesLastResponseTimeUnchanged(t *testing.T) {
	r := NewRegistry([]string{"ROOT"})

	r.RecordSuccess("ROOT", 10)
	r.RecordFailure("ROOT")

	var sb strings.Builder
	require.NoError(t, r.Render(&sb))
	values := parseLines(t, sb.String())

	assert.Equal(t, "2", values["ROOT_request_count"])
	assert.Equal(t, "1", values["ROOT_successful_request_count"])
	assert.Equal(t, "1", values["ROOT_failed_request_count"])
	assert.Equal(t, "10", values["ROOT_last_response_time"])
}

func TestRenderOrdersRoutesAndSeries(t *testing.T) {
	r := NewRegistry([]string{"index", "home"})
	r.RecordSuccess("index", 1)
	r.RecordSuccess("home", 2)

	var sb strings.Builder
	require.NoError(t, r.Render(&sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 8)

	expectedPrefixOrder := []string{
		"index_request_count",
		"index_last_response_time",
		"index_successful_request_count",
		"index_failed_request_count",
		"home_request_count",
		"home_last_response_time",
		"home_successful_request_count",
		"home_failed_request_count",
	}
	for i, prefix := range expectedPrefixOrder {
		assert.True(t, strings.HasPrefix(lines[i], prefix+" "), "line %d: %q", i, lines[i])
	}
}
