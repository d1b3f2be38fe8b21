package tui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/perf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfMarkdown(t *testing.T) {
	out := tui.PerfMarkdown(map[string]perf.Stats{
		"Fast": {Count: 3, Last: time.Millisecond, Mean: time.Millisecond, Min: time.Millisecond, Max: time.Millisecond},
		"Slow": {Count: 1, Last: 2 * time.Second, Mean: 2 * time.Second, Min: 2 * time.Second, Max: 2 * time.Second},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Slow | 1 | 2s | 2s | 2s | 2s |", lines[2])
	assert.Equal(t, "| Fast | 3 | 1ms | 1ms | 1ms | 1ms |", lines[3])
}

func TestPerfMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "_No calls recorded._\n", tui.PerfMarkdown(nil))
}

func TestPrintBanner(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), `\_/\_/`)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	out, err := tui.NewRenderer()("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}
