package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestJSONFormatWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "info", "json"), "hub")
	logger.Info().Str("room_id", "r1").Msg("participant joined")
	logger.Debug().Msg("filtered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "hub", line["component"])
	require.Equal(t, "r1", line["room_id"])
	require.Equal(t, "participant joined", line["message"])
}
