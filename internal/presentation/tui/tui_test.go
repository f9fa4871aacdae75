package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	// A buffer is not a terminal, so the output carries no escape sequences.
	out := Banner(&bytes.Buffer{}, "session abc")
	for _, line := range bannerArt {
		assert.Contains(t, out, line)
	}
	assert.True(t, strings.HasSuffix(out, "  session abc\n"))
	assert.NotContains(t, Banner(&bytes.Buffer{}, ""), "session")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)
	out, err := render("**Count** is 1")
	require.NoError(t, err)
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "is 1")
}
