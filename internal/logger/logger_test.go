package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// These tests mutate the global logger, so they run sequentially and
// restore the development default afterwards.
func TestSetup(t *testing.T) {
	defer Setup("debug", false)

	t.Run("json output carries the service name", func(t *testing.T) {
		Setup("info", true)

		var buf bytes.Buffer
		log := Log.Output(&buf)
		log.Info().Msg("ready")

		out := buf.String()
		require.Contains(t, out, `"service":"schoolfin"`)
		require.Contains(t, out, `"message":"ready"`)
	})

	t.Run("level filters lower-severity events", func(t *testing.T) {
		Setup("warn", true)

		var buf bytes.Buffer
		log := Log.Output(&buf)
		log.Info().Msg("routine")
		log.Warn().Msg("trouble")

		out := buf.String()
		require.NotContains(t, out, "routine")
		require.Contains(t, out, "trouble")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"WARN":    zerolog.WarnLevel,
		" info ":  zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for raw, want := range cases {
		require.Equal(t, want, parseLevel(raw), "input %q", raw)
	}
}
