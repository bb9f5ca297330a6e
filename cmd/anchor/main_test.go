package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/anchor/internal/config"
	"github.com/vango-dev/anchor/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var ae *errors.AnchorError
	require.True(t, stderrors.As(err, &ae), "expected an AnchorError, got %T: %v", err, err)
	return ae.Code
}

func TestRunSoak(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSoak(&out, 50, discard()))

	assert.Contains(t, out.String(), "write 50")
	assert.Contains(t, out.String(), "nested subscriptions: 1")
	assert.Contains(t, out.String(), "Nested subscriptions stayed at 1 across 50 writes")
	assert.Equal(t, 10, strings.Count(out.String(), "write "))
}

func TestRunSoakInvalidWrites(t *testing.T) {
	err := runSoak(io.Discard, 0, discard())
	require.Error(t, err)
	assert.Equal(t, "A302", codeOf(t, err))
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDemo(&out, []string{"blue", "green", "yellow", "red"}, discard()))

	s := out.String()
	assert.Contains(t, s, `<div style="color: yellow"/>`)
	assert.Contains(t, s, "Resumed 5 continuations: 1 accepted, 4 refused")
	assert.Contains(t, s, "Background label: NAVY")
	assert.Contains(t, s, "After clearing the root: 0 color, 0 background subscriptions")
	assert.Contains(t, s, "All subscriptions released")
}

func TestApplyAddr(t *testing.T) {
	cfg := config.New()
	require.NoError(t, applyAddr(cfg, "0.0.0.0:8080"))
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())

	cfg = config.New()
	require.NoError(t, applyAddr(cfg, ":9000"))
	assert.Equal(t, config.DefaultHost+":9000", cfg.Address())

	assert.Equal(t, "A302", codeOf(t, applyAddr(config.New(), "nope")))
	assert.Equal(t, "A302", codeOf(t, applyAddr(config.New(), "localhost:http")))
	assert.Equal(t, "A102", codeOf(t, applyAddr(config.New(), "localhost:99999")))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCodesCommand(t *testing.T) {
	out, err := execute(t, "codes")
	require.NoError(t, err)
	assert.Contains(t, out, "A001")
	assert.Contains(t, out, "Handler panicked")
	assert.Contains(t, out, "A302")

	out, err = execute(t, "codes", "A003")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration into disposed context")
	assert.Contains(t, out, "superseded")

	_, err = execute(t, "codes", "A999")
	require.Error(t, err)
	assert.Equal(t, "A302", codeOf(t, err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}
