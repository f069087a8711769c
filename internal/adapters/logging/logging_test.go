package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/ports"
)

func TestConsoleLogger_TextOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewConsoleLogger(WithOutput(&buf))

	l.Info(context.Background(), "replayed master", ports.F("plugin", "Morrowind"), ports.F("cells", 3))

	assert.Equal(t, "[INFO] replayed master plugin=Morrowind cells=3\n", buf.String())
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn))

	l.Debug(context.Background(), "noise")
	l.Info(context.Background(), "noise")
	l.Warn(context.Background(), "signal")

	assert.Equal(t, "[WARN] signal\n", buf.String())
}

func TestConsoleLogger_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewConsoleLogger(WithOutput(&buf), WithJSONFormat(true))

	l.Error(context.Background(), "boom", ports.F("plugin", "Mod"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "Mod", entry["plugin"])
	assert.NotContains(t, entry, "time", "timestamps are off unless requested")
}

func TestConsoleLogger_WithAddsPersistentFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewConsoleLogger(WithOutput(&buf))
	child := base.With(ports.F("plugin", "Mod"))

	child.Info(context.Background(), "merged")
	base.Info(context.Background(), "plain")

	assert.Contains(t, buf.String(), "[INFO] merged plugin=Mod\n")
	assert.Contains(t, buf.String(), "[INFO] plain\n")
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	l.Debug(context.Background(), "a")
	l.Error(context.Background(), "b", ports.F("k", 1))
	assert.Same(t, l, l.With(ports.F("k", 1)).(*NopLogger))

	l.SetLevel(ports.LevelError)
	assert.Equal(t, ports.LevelError, l.Level())
}

func TestLoggerContextRoundTrip(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	ctx := ports.ContextWithLogger(context.Background(), l)
	assert.Same(t, l, ports.LoggerFromContext(ctx).(*NopLogger))
	assert.Nil(t, ports.LoggerFromContext(context.Background()))
}
