package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &errOut, false)

	logger.Debug("hidden")
	logger.Info("window processed", Fields{"index": 3, "stage": "welch"})
	logger.Warn("malformed sample")
	logger.Error(errors.New("boom"), "window failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO] window processed index=3 stage=welch")
	assert.Contains(t, errOut.String(), "[WARN] malformed sample")
	assert.Contains(t, errOut.String(), "[ERROR] window failed: boom")
}

func TestChildLoggersShareLevel(t *testing.T) {
	var out bytes.Buffer
	parent := NewDefaultLoggerWithWriters(&out, &out, false)
	child := parent.WithFields(Fields{"component": "pipeline"})

	parent.SetLevel(DebugLevel)
	child.Debug("now visible")

	assert.Contains(t, out.String(), "[DEBUG] now visible component=pipeline")
}

func TestWithContextFields(t *testing.T) {
	var out bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &out, false)

	ctx := ContextWithFields(context.Background(), Fields{"session": "s1"})
	ctx = ContextWithFields(ctx, Fields{"channel": 2})
	logger.WithContext(ctx).Info("started")

	assert.Contains(t, out.String(), "channel=2 session=s1")
}

func TestFatalCallsExit(t *testing.T) {
	var out bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &out, false)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("bad config"), "cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "[FATAL] cannot start: bad config")
}
