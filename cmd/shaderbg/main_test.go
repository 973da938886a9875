package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-h"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "shaderbg [-h|"))
	assert.Contains(t, stdout.String(), "\nPrefix:\n\n")
	assert.Empty(t, stderr.String())
}

func TestRun_usageErrors(t *testing.T) {
	for _, tc := range [...]struct {
		args []string
		want string
	}{
		{[]string{"-f", "abc", "*", "x.frag"}, "Invalid fps 'abc'\n"},
		{[]string{"--speed=-1", "*", "x.frag"}, "Invalid speed '-1'\n"},
		{[]string{"-l", "wallpaper", "*", "x.frag"}, "Invalid layer 'wallpaper'"},
		{[]string{"DP-1"}, "Expected 2 arguments, got 1\n"},
	} {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run(tc.args, &stdout, &stderr))
			assert.True(t, strings.HasPrefix(stderr.String(), tc.want), stderr.String())
			assert.Contains(t, stderr.String(), "shaderbg [-h|")
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_missingShader(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.frag")
	assert.Equal(t, 1, run([]string{"*", path}, &stdout, &stderr))

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "shaderbg: shader: "), last)
	assert.Contains(t, last, "missing.frag")
}
