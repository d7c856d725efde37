package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-path", "./migrations", "-log-level", "debug", "step", "-1"})
	require.NoError(t, err)
	assert.Equal(t, &options{path: "./migrations", logLevel: "debug", command: "step", args: []string{"-1"}}, opts)

	_, err = parseFlags(nil)
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_UsageErrors(t *testing.T) {
	log := zaptest.NewLogger(t)

	for _, cmd := range []string{"create", "drop"} {
		err := run(&options{command: cmd}, log)
		assert.True(t, errors.Is(err, errUsage), cmd)
	}
}

func TestRun_CreateAndList(t *testing.T) {
	dir := t.TempDir()
	log := zaptest.NewLogger(t)

	require.NoError(t, run(&options{path: dir, command: "create", args: []string{"add checksum"}}, log))
	require.NoError(t, run(&options{path: dir, command: "list"}, log))
}

func TestIntArg(t *testing.T) {
	n, err := intArg([]string{"-2"}, "step <n>")
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	_, err = intArg(nil, "step <n>")
	assert.ErrorIs(t, err, errUsage)

	_, err = intArg([]string{"two"}, "step <n>")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)
}
