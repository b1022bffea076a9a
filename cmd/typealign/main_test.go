package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUsageOnMissingArgs tests that short invocations print usage and
// exit zero.
func TestUsageOnMissingArgs(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"only-one.h"})

	err := cmd.Execute()
	assert.NoError(t, err)
}

// TestMissingHeaderFails tests the not-found error path
func TestMissingHeaderFails(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		filepath.Join(dir, "absent-input.h"),
		filepath.Join(dir, "absent-target.h"),
		dir,
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// TestDigest tests the checksum helper
func TestDigest(t *testing.T) {
	assert.Len(t, digest([]byte("x")), 64)
	assert.Equal(t, digest([]byte("x")), digest([]byte("x")))
	assert.NotEqual(t, digest([]byte("x")), digest([]byte("y")))
}
