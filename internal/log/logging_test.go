package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	type testCase struct {
		in      string
		want    slog.Level
		wantErr bool
	}

	cases := []testCase{
		{in: "trace", want: LevelTrace},
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
		} else {
			assert.NoError(t, err, tc.in)
		}
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestConsoleHandlerSplitsBySeverity(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: NewConsoleHandler(&out, slog.LevelInfo)},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: NewConsoleHandler(&errOut, slog.LevelError)},
	}})

	logger.Debug("hidden")
	logger.With("device", 3).Info("gamepad added", "slot", 0)
	logger.Error("boom")

	require.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "INFO gamepad added device=3 slot=0")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "ERROR boom")
}
