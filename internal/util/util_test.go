package util

import (
	"bytes"
	"julekalender_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, RetryAfterSeconds(now, now.Add(30*time.Second)))
	assert.Equal(t, 2, RetryAfterSeconds(now, now.Add(1500*time.Millisecond)))
	assert.Equal(t, 1, RetryAfterSeconds(now, now))
	assert.Equal(t, 1, RetryAfterSeconds(now, now.Add(-time.Minute)))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-12-24")
	assert.True(t, ok)
	assert.Equal(t, "2025-12-24", d)

	_, ok = ParseDate("2025-13-01")
	assert.False(t, ok)
	_, ok = ParseDate("24.12.2025")
	assert.False(t, ok)
}

func TestDetectMediaType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	kind, _, err := DetectMediaType(bytes.NewReader(png), "star.png")
	require.NoError(t, err)
	assert.Equal(t, model.MediaPNG, kind)

	kind, mimeType, err := DetectMediaType(bytes.NewReader([]byte("# Hint\n\nLook up.\n")), "hint.md")
	require.NoError(t, err)
	assert.Equal(t, model.MediaMarkdown, kind)
	assert.Equal(t, "text/markdown", mimeType)

	_, _, err = DetectMediaType(bytes.NewReader([]byte("just text")), "notes.txt")
	assert.ErrorIs(t, err, ErrInvalidMediaType)

	_, _, err = DetectMediaType(bytes.NewReader([]byte("%PDF-1.4\n")), "doc.md")
	assert.ErrorIs(t, err, ErrInvalidMediaType)
}
