package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lapu-lapu-poc/server/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("hidden")
	l := Component("tools")
	l.Info().Str("tool", "lookup_product").Msg("tool end")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "tools", entry["component"])
	assert.Equal(t, "lookup_product", entry["tool"])
	assert.Equal(t, "tool end", entry["message"])
}

func TestInit_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Development, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
