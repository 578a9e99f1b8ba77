package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel, "json")

	log.Debug().Msg("hidden")
	log.Info().Str("topic", "kinematics").Msg("generated")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "generated", entry["message"])
	assert.Equal(t, "kinematics", entry["topic"])
	assert.Equal(t, "physiq", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.DebugLevel, "pretty")
	log.Debug().Msg("refinement skipped")

	out := buf.String()
	assert.Contains(t, out, "refinement skipped")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))), "pretty output should not be JSON")
}

func TestSetup_LevelParsing(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	Setup("warn", "json")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Setup("nonsense", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Setup("", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
